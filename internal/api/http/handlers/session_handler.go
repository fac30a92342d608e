package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/api/dto"
	"github.com/spec-kit/taskboard-console/internal/guard"
	"github.com/spec-kit/taskboard-console/internal/session"
	apperrors "github.com/spec-kit/taskboard-console/pkg/util"
)

// SessionService is the part of session.Manager the handlers drive.
type SessionService interface {
	Snapshot() session.Snapshot
	Authenticate(ctx context.Context, usernameOrEmail, password string) error
	Logout(ctx context.Context)
	TakeNotice() string
}

// SessionHandler exposes login, logout and the session view.
type SessionHandler struct {
	sessions SessionService
	logger   *zap.Logger
}

func NewSessionHandler(sessions SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// LoginForm handles GET /login. The expiry notice is shown once.
func (h *SessionHandler) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": dto.LoginView{
			View:   "login",
			Notice: h.sessions.TakeNotice(),
			From:   c.Query("from"),
		},
	})
}

// Login handles POST /login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	req.UsernameOrEmail = strings.TrimSpace(req.UsernameOrEmail)
	if req.UsernameOrEmail == "" || req.Password == "" {
		return apperrors.NewValidationError("usernameOrEmail and password required", nil)
	}

	err := h.sessions.Authenticate(c.UserContext(), req.UsernameOrEmail, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrLoginRejected):
		return apperrors.NewInvalidCredentials()
	case errors.Is(err, session.ErrLoginSuperseded):
		return apperrors.NewDomainError("LOGIN_SUPERSEDED", "login cancelled by logout", http.StatusConflict, nil)
	case errors.Is(err, session.ErrNoAuthenticator):
		return apperrors.NewInternalError(err)
	default:
		h.logger.Warn("login request failed", zap.Error(err))
		return apperrors.NewBadGateway("users service unavailable", err)
	}

	return c.Redirect(guard.SafeReturn(req.From), http.StatusSeeOther)
}

// Logout handles POST /logout. It always succeeds.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Logout(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.NewSessionView(h.sessions.Snapshot())})
}

// Current handles GET /session.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewSessionView(h.sessions.Snapshot())})
}
