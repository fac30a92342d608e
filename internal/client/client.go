// Package client talks to the users, projects and tasks REST backends on
// behalf of the console. Every call carries the session's bearer token and
// a 401 from any backend ends the session.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/config"
)

var (
	// ErrUnauthorized is returned after a backend answered 401.
	ErrUnauthorized = errors.New("backend rejected the session")
	// ErrUnexpectedStatus matches every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected backend status")
)

// Backend names one of the REST services.
type Backend string

const (
	Users    Backend = "users"
	Projects Backend = "projects"
	Tasks    Backend = "tasks"
)

// StatusError is a non-2xx answer other than 401.
type StatusError struct {
	Backend Backend
	Method  string
	Path    string
	Status  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s %s: status %d", e.Backend, e.Method, e.Path, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// TokenSource yields the current bearer token, or "" when there is none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client is safe for concurrent use.
type Client struct {
	baseURLs       map[Backend]string
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized func(context.Context)
	logger         *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.tokens = src
	}
}

// WithUnauthorizedHandler runs fn whenever a backend answers 401.
func WithUnauthorizedHandler(fn func(context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for the configured backends.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURLs: map[Backend]string{
			Users:    strings.TrimRight(cfg.UsersURL, "/"),
			Projects: strings.TrimRight(cfg.ProjectsURL, "/"),
			Tasks:    strings.TrimRight(cfg.TasksURL, "/"),
		},
		timeout: cfg.Timeout(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends in as JSON (when non-nil) and decodes a 2xx body into out (when non-nil).
func (c *Client) Do(ctx context.Context, backend Backend, method, path string, in, out any) error {
	code, body, err := c.send(ctx, backend, method, path, in, true)
	if err != nil {
		return err
	}

	switch {
	case code == fiber.StatusUnauthorized:
		c.logger.Info("backend rejected session", zap.String("backend", string(backend)), zap.String("path", path))
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return ErrUnauthorized
	case code < 200 || code >= 300:
		return &StatusError{Backend: backend, Method: method, Path: path, Status: code}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", backend, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, backend Backend, method, path string, in any, withToken bool) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	base, ok := c.baseURLs[backend]
	if !ok {
		return 0, nil, fmt.Errorf("unknown backend %q", backend)
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(base + path)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, fmt.Errorf("%s %s: %w", backend, path, err)
	}

	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if withToken && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}
	if in != nil {
		agent.JSON(in)
	}
	agent.Timeout(c.deadline(ctx))

	start := time.Now()
	code, body, errs := agent.Bytes()
	c.logger.Debug("backend call",
		zap.String("backend", string(backend)),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", code),
		zap.Duration("latency", time.Since(start)),
	)
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("%s %s: %w", backend, path, errors.Join(errs...))
	}
	return code, body, nil
}

func (c *Client) deadline(ctx context.Context) time.Duration {
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}
