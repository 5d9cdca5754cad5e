package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL   = "http://localhost:4444"
	DefaultTimeout   = 15 * time.Second
	AuthHeader       = "x-auth-token"
	RequestIDHeader  = "X-Request-ID"
	defaultUserAgent = "cinema-booking-cli"
	errorBodyLimit   = 64 << 10
)

// TokenSource yields the current session token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Client wraps HTTP access to the cinema backend. Calls are never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tokens     TokenSource
	logger     *slog.Logger
	newID      func() string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(userAgent) != "" {
			c.userAgent = userAgent
		}
	}
}

// NewClient creates a client for baseURL. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource wires the session that supplies auth tokens.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one request. body, when non-nil, is encoded as JSON; out, when
// non-nil, receives the decoded 2xx body. An empty 2xx body leaves out untouched.
func (c *Client) Do(ctx context.Context, method string, path string, body any, requiresAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.newID()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if requiresAuth && c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			req.Header.Set(AuthHeader, token)
		}
	}

	started := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			"method", method, "path", path, "request_id", requestID,
			"duration", time.Since(started), "error", err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer res.Body.Close()

	c.logger.Debug("request completed",
		"method", method, "path", path, "request_id", requestID,
		"status", res.StatusCode, "duration", time.Since(started))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(res, method, path)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response from %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(res *http.Response, method string, path string) *APIError {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Method:     method,
		Path:       path,
	}
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
	var body ErrorResponse
	if err := json.Unmarshal(bytes.TrimSpace(snippet), &body); err == nil {
		apiErr.Message = strings.TrimSpace(body.Message)
		apiErr.Messages = compactMessages(body.Messages)
		apiErr.Success = body.Success
	}
	return apiErr
}

func compactMessages(messages []string) []string {
	var out []string
	for _, msg := range messages {
		if msg = strings.TrimSpace(msg); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}
