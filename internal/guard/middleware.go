package guard

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/session"
	apperrors "github.com/spec-kit/taskboard-console/pkg/util"
)

// LocalsSnapshot is the fiber.Ctx locals key holding the snapshot a request was admitted with.
const LocalsSnapshot = "session_snapshot"

// Middleware adapts guard decisions to fiber handlers.
type Middleware struct {
	watcher *Watcher
	logger  *zap.Logger
}

func NewMiddleware(watcher *Watcher, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{watcher: watcher, logger: logger}
}

// Authenticated admits only authenticated sessions.
func (m *Middleware) Authenticated() fiber.Handler {
	return m.handle(func(snap session.Snapshot, requested string) Decision {
		return RequireAuthenticated(snap, requested)
	})
}

// Role admits authenticated sessions holding role.
func (m *Middleware) Role(role auth.Role) fiber.Handler {
	return m.handle(func(snap session.Snapshot, requested string) Decision {
		return RequireRole(snap, role, requested)
	})
}

// PublicOnly admits only visitors without a session.
func (m *Middleware) PublicOnly() fiber.Handler {
	return m.handle(func(snap session.Snapshot, _ string) Decision {
		return PublicOnly(snap)
	})
}

func (m *Middleware) handle(decide func(session.Snapshot, string) Decision) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := m.watcher.Snapshot()
		d := decide(snap, c.OriginalURL())

		switch d.Outcome {
		case Render:
			c.Locals(LocalsSnapshot, snap)
			return c.Next()
		case Loading:
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"data": fiber.Map{"view": "loading"},
			})
		case Redirect:
			return c.Redirect(d.Location, fiber.StatusFound)
		default:
			m.logger.Info("access denied",
				zap.String("path", c.Path()),
				zap.String("required_role", d.RequiredRole.String()),
				zap.String("role", snap.Session.GetRole().String()),
			)
			return apperrors.NewAccessDenied(d.RequiredRole.String())
		}
	}
}

// SnapshotFrom returns the snapshot stored by an admitting guard.
func SnapshotFrom(c *fiber.Ctx) (session.Snapshot, bool) {
	snap, ok := c.Locals(LocalsSnapshot).(session.Snapshot)
	return snap, ok
}
