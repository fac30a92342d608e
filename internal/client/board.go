package client

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard-console/internal/domain"
)

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.Do(ctx, Projects, fiber.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var project domain.Project
	err := c.Do(ctx, Projects, fiber.MethodGet, "/projects/"+url.PathEscape(id), nil, &project)
	return project, err
}

func (c *Client) ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.Do(ctx, Tasks, fiber.MethodGet, "/tasks/project/"+url.PathEscape(projectID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var task domain.Task
	err := c.Do(ctx, Tasks, fiber.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task)
	return task, err
}

// UpdateTaskStatus sends the status change; the ownership check is the caller's.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	body := struct {
		Status domain.TaskStatus `json:"status"`
	}{Status: status}
	return c.Do(ctx, Tasks, fiber.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", body, nil)
}
