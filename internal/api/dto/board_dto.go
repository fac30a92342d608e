package dto

import (
	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/domain"
)

// ProjectView annotates a project with what the caller may do to it.
type ProjectView struct {
	domain.Project
	CanAct bool `json:"can_act"`
}

// Affordances lists role-gated controls the board shows.
type Affordances struct {
	CreateProject bool `json:"create_project"`
	ManageMembers bool `json:"manage_members"`
}

// BoardView is the home page payload.
type BoardView struct {
	Dashboard   string             `json:"dashboard"`
	Projects    []ProjectView      `json:"projects"`
	Affordances Affordances        `json:"affordances"`
	Permissions auth.PermissionSet `json:"permissions"`
}

// TaskStatusRequest changes a task's status code.
type TaskStatusRequest struct {
	Status *domain.TaskStatus `json:"status"`
}

// TaskStatusResponse echoes the applied status.
type TaskStatusResponse struct {
	ID         string            `json:"id"`
	Status     domain.TaskStatus `json:"status"`
	StatusName string            `json:"status_name"`
}
