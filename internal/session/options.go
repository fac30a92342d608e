package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/events"
	"github.com/spec-kit/taskboard-console/internal/observability"
)

const (
	DefaultRevalidateInterval = 60 * time.Second
	DefaultTTL                = 3600 * time.Second
	DefaultLoginPath          = "/login"
)

// LoginResult is the backend login response.
type LoginResult struct {
	Token     string
	Role      string
	ExpiresIn int
}

// Authenticator performs the network half of a login.
type Authenticator interface {
	Login(ctx context.Context, usernameOrEmail, password string) (LoginResult, error)
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithLogger sets the zap logger; nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDispatcher publishes session events on a shared dispatcher.
func WithDispatcher(dispatcher events.Dispatcher) Option {
	return func(m *Manager) {
		if dispatcher != nil {
			m.dispatcher = dispatcher
		}
	}
}

// WithMetrics counts state transitions.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithAuthenticator sets the backend used by Authenticate.
func WithAuthenticator(a Authenticator) Option {
	return func(m *Manager) {
		m.authenticator = a
	}
}

// WithRevalidateInterval sets the tick period; non-positive values keep the default.
func WithRevalidateInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithDefaultTTL sets the ttl used when the backend omits one.
func WithDefaultTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.defaultTTL = d
		}
	}
}

// WithLoginPath sets the redirect target carried by expiry events.
func WithLoginPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.loginPath = path
		}
	}
}
