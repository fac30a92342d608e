package domain

import (
	"fmt"

	"github.com/spec-kit/taskboard-console/internal/auth"
)

// TaskStatus is the numeric status code used by the tasks backend.
type TaskStatus int

const (
	TaskStatusPending TaskStatus = iota
	TaskStatusInProgress
	TaskStatusCompleted
)

var taskStatusNames = map[TaskStatus]string{
	TaskStatusPending:    "pending",
	TaskStatusInProgress: "in progress",
	TaskStatusCompleted:  "completed",
}

// Valid reports whether s is a known status code.
func (s TaskStatus) Valid() bool {
	_, ok := taskStatusNames[s]
	return ok
}

func (s TaskStatus) String() string {
	if name, ok := taskStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Task belongs to a project and is worked on by its members.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Members     []string   `json:"members"`
	Status      TaskStatus `json:"status"`
	CreatorID   string     `json:"creator_id"`
}

// Resource exposes the ownership fields checked by the policy.
func (t Task) Resource() auth.Resource {
	return auth.Resource{CreatorID: t.CreatorID, MemberIDs: t.Members}
}
