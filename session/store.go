// Package session holds the authenticated identity of the current run.
// Nothing here is persisted; every run starts anonymous.
package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

// Gateway is the part of the API client the store needs.
type Gateway interface {
	Login(ctx context.Context, email string, password string) (service.LoginResponse, error)
	Register(ctx context.Context, req service.RegisterRequest) (service.RegisterResponse, error)
}

// Session is a token together with the user it belongs to.
type Session struct {
	Token     string
	User      model.UserProfile
	CreatedAt time.Time
}

// Store owns the current Session. A nil session means anonymous.
type Store struct {
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *Session
}

func NewStore(gateway Gateway, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{gateway: gateway, logger: logger, now: time.Now}
}

// Login authenticates and, only on a complete success, replaces the session.
func (s *Store) Login(ctx context.Context, email string, password string) (model.UserProfile, error) {
	if strings.TrimSpace(email) == "" {
		return model.UserProfile{}, &service.ValidationError{Field: "email", Message: "is required"}
	}
	if password == "" {
		return model.UserProfile{}, &service.ValidationError{Field: "password", Message: "is required"}
	}

	res, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login failed", "error", err)
		return model.UserProfile{}, err
	}
	if !res.Success || res.User == nil || res.User.Id <= 0 || res.Token == "" {
		success := res.Success
		s.logger.Info("login rejected", "success", res.Success)
		return model.UserProfile{}, &service.APIError{
			StatusCode: http.StatusOK,
			Method:     http.MethodPost,
			Path:       "/api/users/loginCheck",
			Message:    loginMessage(res.Message),
			Success:    &success,
		}
	}

	next := &Session{Token: res.Token, User: *res.User, CreatedAt: s.now()}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	attrs := []any{"user_id", next.User.Id, "admin", next.User.IsAdmin}
	if exp, ok := tokenExpiry(next.Token); ok {
		attrs = append(attrs, "expires_at", exp)
	}
	s.logger.Info("logged in", attrs...)
	return next.User, nil
}

// Register creates an account without logging in.
func (s *Store) Register(ctx context.Context, username string, email string, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return &service.ValidationError{Field: "username", Message: "is required"}
	case strings.TrimSpace(email) == "":
		return &service.ValidationError{Field: "email", Message: "is required"}
	case password == "":
		return &service.ValidationError{Field: "password", Message: "is required"}
	}
	_, err := s.gateway.Register(ctx, service.RegisterRequest{
		Username:     strings.TrimSpace(username),
		EmailAddress: strings.TrimSpace(email),
		Password:     password,
	})
	return err
}

// Logout drops the session. Safe to call when anonymous.
func (s *Store) Logout() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()
	if had {
		s.logger.Info("logged out")
	}
}

func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *Store) CurrentUser() (model.UserProfile, bool) {
	current, ok := s.Current()
	return current.User, ok
}

func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// IsAdmin is false when anonymous.
func (s *Store) IsAdmin() bool {
	user, ok := s.CurrentUser()
	return ok && user.IsAdmin
}

// Token implements service.TokenSource.
func (s *Store) Token() (string, bool) {
	current, ok := s.Current()
	if !ok {
		return "", false
	}
	return current.Token, true
}

// ExpiresAt reports the exp claim when the token is a JWT. It is informational only.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token, ok := s.Token()
	if !ok {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}

func tokenExpiry(raw string) (time.Time, bool) {
	if strings.Count(raw, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func loginMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return "login failed"
	}
	return msg
}
