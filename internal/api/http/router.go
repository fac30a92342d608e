package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard-console/internal/api/http/handlers"
	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/guard"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Session *handlers.SessionHandler
	Board   *handlers.BoardHandler
	Metrics *handlers.MetricsHandler
	Guards  *guard.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Show)

	app.Get("/session", cfg.Session.Current)
	app.Post("/logout", cfg.Session.Logout)

	app.Get(guard.LoginPath, cfg.Guards.PublicOnly(), cfg.Session.LoginForm)
	app.Post(guard.LoginPath, cfg.Guards.PublicOnly(), cfg.Session.Login)

	app.Get("/", cfg.Guards.Authenticated(), cfg.Board.Home)
	app.Get("/projects/new", cfg.Guards.Role(auth.RoleManager), cfg.Board.NewProject)
	app.Patch("/tasks/:id/status", cfg.Guards.Authenticated(), cfg.Board.UpdateTaskStatus)
}
