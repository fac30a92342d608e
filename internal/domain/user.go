package domain

import "github.com/spec-kit/taskboard-console/internal/auth"

// User is an account as the users backend reports it.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      auth.Role `json:"role"`
}
