package dto

import (
	"time"

	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/session"
)

// LoginRequest is the login form payload.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" form:"usernameOrEmail"`
	Password        string `json:"password" form:"password"`
	From            string `json:"from" form:"from"`
}

// LoginView is rendered by GET /login.
type LoginView struct {
	View   string `json:"view"`
	Notice string `json:"notice,omitempty"`
	From   string `json:"from,omitempty"`
}

// SessionView is the public shape of a snapshot. The token is never included.
type SessionView struct {
	State         session.State      `json:"state"`
	Authenticated bool               `json:"authenticated"`
	SubjectID     string             `json:"subject_id,omitempty"`
	Role          auth.Role          `json:"role,omitempty"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
	Persisted     bool               `json:"persisted"`
	Permissions   auth.PermissionSet `json:"permissions"`
}

func NewSessionView(snap session.Snapshot) SessionView {
	view := SessionView{
		State:         snap.State,
		Authenticated: snap.Authenticated(),
		Persisted:     snap.Persisted,
		Permissions:   auth.Permissions(snap.Principal()),
	}
	if snap.Authenticated() {
		expiresAt := snap.Session.ExpiresAt
		view.SubjectID = snap.Session.SubjectID
		view.Role = snap.Session.Role
		view.ExpiresAt = &expiresAt
	}
	return view
}
