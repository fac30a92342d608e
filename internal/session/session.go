// Package session owns the console's authentication state machine.
//
// A Manager holds exactly one Session per console process. It rehydrates the
// session from a credentials.Store on Init, re-validates it on a fixed tick,
// and publishes every state change through an events.Dispatcher so that
// guards react to changes instead of polling.
package session

import (
	"time"

	"github.com/spec-kit/taskboard-console/internal/auth"
)

// State is the authentication state of the console.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateLoading       State = "loading"
	StateAuthenticated State = "authenticated"
	StateExpired       State = "expired"
)

// Session is the console's belief about the current user. Values are never
// mutated after publication; every transition builds a new one.
type Session struct {
	Token     string    `json:"-"`
	SubjectID string    `json:"subject_id"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

var _ auth.Principal = (*Session)(nil)

func (s *Session) GetSubjectID() string {
	if s == nil {
		return ""
	}
	return s.SubjectID
}

func (s *Session) GetRole() auth.Role {
	if s == nil {
		return ""
	}
	return s.Role
}

func (s *Session) sameAs(other *Session) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Token == other.Token && s.Role == other.Role && s.ExpiresAt.Equal(other.ExpiresAt)
}

// Snapshot is an immutable view of the manager state.
type Snapshot struct {
	Version   uint64   `json:"version"`
	State     State    `json:"state"`
	Session   *Session `json:"session,omitempty"`
	Persisted bool     `json:"persisted"`
}

// Authenticated reports whether the snapshot carries a live session.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Session != nil
}

// Principal returns the session for policy checks, or nil when there is none.
func (s Snapshot) Principal() auth.Principal {
	if !s.Authenticated() {
		return nil
	}
	return s.Session
}
