package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/api/dto"
	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/client"
	"github.com/spec-kit/taskboard-console/internal/domain"
	"github.com/spec-kit/taskboard-console/internal/guard"
	apperrors "github.com/spec-kit/taskboard-console/pkg/util"
)

// BoardBackend is the part of the REST client the board pages use.
type BoardBackend interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error
}

// BoardHandler serves the guarded board pages.
type BoardHandler struct {
	backend BoardBackend
	logger  *zap.Logger
}

func NewBoardHandler(backend BoardBackend, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{backend: backend, logger: logger}
}

// Home handles GET /.
func (h *BoardHandler) Home(c *fiber.Ctx) error {
	snap, ok := guard.SnapshotFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	principal := snap.Principal()

	projects, err := h.backend.ListProjects(c.UserContext())
	if err != nil {
		return h.backendError(err, "projects")
	}

	views := make([]dto.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, dto.ProjectView{Project: p, CanAct: auth.CanActOn(principal, p.Resource())})
	}

	managerOnly := []auth.Role{auth.RoleManager}
	return c.JSON(fiber.Map{
		"data": dto.BoardView{
			Dashboard: auth.Switch(principal, "manager", "member", "guest"),
			Projects:  views,
			Affordances: dto.Affordances{
				CreateProject: guard.Visible(snap, managerOnly, false),
				ManageMembers: guard.Visible(snap, managerOnly, true),
			},
			Permissions: auth.Permissions(principal),
		},
	})
}

// NewProject handles GET /projects/new, reachable only by managers.
func (h *BoardHandler) NewProject(c *fiber.Ctx) error {
	snap, _ := guard.SnapshotFrom(c)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"view":        "project_form",
			"permissions": auth.Permissions(snap.Principal()),
		},
	})
}

// UpdateTaskStatus handles PATCH /tasks/:id/status.
func (h *BoardHandler) UpdateTaskStatus(c *fiber.Ctx) error {
	snap, ok := guard.SnapshotFrom(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == nil || !req.Status.Valid() {
		return apperrors.NewValidationError("status must be 0, 1 or 2", nil)
	}

	id := c.Params("id")
	task, err := h.backend.GetTask(c.UserContext(), id)
	if err != nil {
		return h.backendError(err, "task")
	}
	if !auth.CanUpdateTaskStatus(snap.Principal(), task.Resource()) {
		return apperrors.NewForbidden("only the task creator, its members or a manager may change its status")
	}

	if err := h.backend.UpdateTaskStatus(c.UserContext(), id, *req.Status); err != nil {
		return h.backendError(err, "task")
	}

	return c.JSON(fiber.Map{
		"data": dto.TaskStatusResponse{ID: id, Status: *req.Status, StatusName: req.Status.String()},
	})
}

func (h *BoardHandler) backendError(err error, resource string) error {
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return apperrors.NewUnauthorized("session expired")
	case errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound:
		return apperrors.NewNotFound(resource, nil)
	default:
		h.logger.Warn("backend call failed", zap.String("resource", resource), zap.Error(err))
		return apperrors.NewBadGateway(resource+" service unavailable", err)
	}
}
