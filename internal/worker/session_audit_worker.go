package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/events"
	"github.com/spec-kit/taskboard-console/internal/session"
)

// SessionAuditWorker writes an audit line for every session event.
type SessionAuditWorker struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	stops      []func()
}

func NewSessionAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) *SessionAuditWorker {
	return &SessionAuditWorker{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// Start subscribes to session events. It is a no-op without a dispatcher.
func (w *SessionAuditWorker) Start() {
	if w.dispatcher == nil || len(w.stops) > 0 {
		return
	}
	w.stops = append(w.stops,
		w.dispatcher.Subscribe(events.EventSessionStateChanged, w.handleStateChanged),
		w.dispatcher.Subscribe(events.EventSessionExpired, w.handleExpired),
	)
}

// Stop removes the subscriptions.
func (w *SessionAuditWorker) Stop() {
	for _, stop := range w.stops {
		stop()
	}
	w.stops = nil
}

func (w *SessionAuditWorker) handleStateChanged(_ context.Context, event events.Event) error {
	snap, ok := event.Payload.(session.Snapshot)
	if !ok {
		return nil
	}
	w.logger.Info("SessionStateChanged",
		zap.String("event_id", event.ID),
		zap.String("state", string(snap.State)),
		zap.Uint64("version", snap.Version),
		zap.String("subject_id", snap.Session.GetSubjectID()),
		zap.String("role", snap.Session.GetRole().String()),
		zap.Bool("persisted", snap.Persisted),
	)
	return nil
}

func (w *SessionAuditWorker) handleExpired(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ExpiredPayload)
	if !ok {
		return nil
	}
	w.logger.Warn("SessionExpired",
		zap.String("event_id", event.ID),
		zap.String("reason", payload.Reason),
		zap.String("subject_id", payload.SubjectID),
		zap.String("redirect_to", payload.RedirectTo),
	)
	return nil
}
