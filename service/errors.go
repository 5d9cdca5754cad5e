package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrAuthenticationRequired is returned when an operation needs a logged-in user.
var ErrAuthenticationRequired = errors.New("authentication required")

// APIError is returned when the backend responds with a non-2xx status, or with
// a 2xx body that reports success=false.
type APIError struct {
	StatusCode int
	Status     string
	Method     string
	Path       string
	Message    string
	Messages   []string
	Success    *bool
}

func (e *APIError) Error() string {
	if e == nil {
		return "cinema api error"
	}
	return e.Text()
}

// Text is the server-provided message, or one derived from the status.
func (e *APIError) Text() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "\n")
	}
	if e.Status != "" {
		return "request failed: " + e.Status
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "request failed"
}

// TransportError is returned when no HTTP response was obtained at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports bad input detected before any request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// AuthorizationError means the user is known but lacks the privilege for Action.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	if e.Action == "" {
		return "admin privileges required"
	}
	return "admin privileges required to " + e.Action
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// Message renders err for display. Server messages are returned verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		apiErr        *APIError
		transportErr  *TransportError
		validationErr *ValidationError
		authzErr      *AuthorizationError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Text()
	case errors.As(err, &transportErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return "could not reach server: request timed out"
		}
		return "could not reach server: " + transportErr.Err.Error()
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &authzErr):
		return authzErr.Error()
	case errors.Is(err, ErrAuthenticationRequired):
		return "please log in first"
	default:
		return err.Error()
	}
}
