package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventSessionStateChanged fires on every session state transition.
	EventSessionStateChanged EventType = "session_state_changed"
	// EventSessionExpired fires once per expiry or forced invalidation and
	// asks whoever owns navigation to send the operator to the login page.
	EventSessionExpired EventType = "session_expired"
)

// Event represents a session event emitted by the manager.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, at time.Time, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Type: eventType, Timestamp: at, Payload: payload}
}

// ExpiredPayload describes why a session ended without an explicit logout.
type ExpiredPayload struct {
	Reason       string `json:"reason"`
	RedirectTo   string `json:"redirect_to"`
	SubjectID    string `json:"subject_id,omitempty"`
	WasPersisted bool   `json:"was_persisted"`
}
