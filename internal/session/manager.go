package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/credentials"
	"github.com/spec-kit/taskboard-console/internal/events"
	"github.com/spec-kit/taskboard-console/internal/observability"
)

// Manager coordinates login, logout, rehydration and periodic re-validation.
type Manager struct {
	store         credentials.Store
	authenticator Authenticator
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
	interval      time.Duration
	defaultTTL    time.Duration
	loginPath     string

	// opMu serializes transitions, including their store I/O.
	opMu sync.Mutex

	// stateMu guards snap and notice so readers never wait on store I/O.
	stateMu sync.RWMutex
	snap    Snapshot
	notice  string

	// generation is bumped by Logout and Invalidate; a login response
	// started under an older generation is discarded.
	generation atomic.Uint64

	tickMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// pending collects events raised under opMu and published after it is released.
type pending []events.Event

// NewManager builds an anonymous manager backed by store.
func NewManager(store credentials.Store, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		dispatcher: events.NewInMemoryDispatcher(),
		logger:     zap.NewNop(),
		now:        time.Now,
		interval:   DefaultRevalidateInterval,
		defaultTTL: DefaultTTL,
		loginPath:  DefaultLoginPath,
		snap:       Snapshot{State: StateAnonymous},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init rehydrates the session from the credential store and starts the
// re-validation tick. Calling Init again never starts a second tick.
func (m *Manager) Init(ctx context.Context) {
	m.rehydrate(ctx)
	m.startTicker(ctx)
}

// Dispose stops the re-validation tick and waits for it to exit.
func (m *Manager) Dispose() {
	m.tickMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.tickMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the re-validation tick is active.
func (m *Manager) Running() bool {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	return m.cancel != nil
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.snap
}

// Token returns the bearer token of the live session, or "".
func (m *Manager) Token() string {
	snap := m.Snapshot()
	if !snap.Authenticated() {
		return ""
	}
	return snap.Session.Token
}

// TakeNotice returns the pending one-time notice and clears it.
func (m *Manager) TakeNotice() string {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	notice := m.notice
	m.notice = ""
	return notice
}

// Subscribe calls fn with every new snapshot until the returned func is called.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return m.dispatcher.Subscribe(events.EventSessionStateChanged, func(_ context.Context, evt events.Event) error {
		if snap, ok := evt.Payload.(Snapshot); ok {
			fn(snap)
		}
		return nil
	})
}

// OnExpired calls fn once per expiry or forced invalidation.
func (m *Manager) OnExpired(fn func(events.ExpiredPayload)) (unsubscribe func()) {
	return m.dispatcher.Subscribe(events.EventSessionExpired, func(_ context.Context, evt events.Event) error {
		if payload, ok := evt.Payload.(events.ExpiredPayload); ok {
			fn(payload)
		}
		return nil
	})
}

// Login applies a token issued by the backend. An empty role falls back to the
// token's audience claim. ttlSeconds <= 0 uses the default ttl. It returns
// false when the token cannot be decoded or the role is unknown; it never
// fails because the credential store is unavailable.
func (m *Manager) Login(ctx context.Context, token string, role auth.Role, ttlSeconds int) bool {
	return m.login(ctx, m.generation.Load(), token, role, ttlSeconds) == nil
}

// Authenticate performs the backend login and applies its result unless a
// Logout or Invalidate happened while the request was in flight.
func (m *Manager) Authenticate(ctx context.Context, usernameOrEmail, password string) error {
	if m.authenticator == nil {
		return ErrNoAuthenticator
	}

	gen := m.generation.Load()
	result, err := m.authenticator.Login(ctx, usernameOrEmail, password)
	if err != nil {
		if errors.Is(err, ErrLoginRejected) {
			return ErrLoginRejected
		}
		return fmt.Errorf("login request: %w", err)
	}

	err = m.login(ctx, gen, result.Token, auth.Role(result.Role), result.ExpiresIn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrLoginSuperseded):
		m.logger.Info("discarding login response after logout")
		return ErrLoginSuperseded
	default:
		return ErrLoginRejected
	}
}

// Logout always leaves the manager anonymous. The store is cleared before the
// in-memory session so an interrupted logout still fails the store's expiry check.
func (m *Manager) Logout(ctx context.Context) {
	m.generation.Add(1)

	m.opMu.Lock()
	var p pending
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear credential record on logout", zap.Error(err))
	}
	if m.Snapshot().State != StateAnonymous {
		m.transition(&p, StateAnonymous, nil, false)
	}
	m.opMu.Unlock()

	m.publish(ctx, p)
}

// Invalidate forces a logout after a downstream 401. It raises the same
// one-shot expiry event as the re-validation tick.
func (m *Manager) Invalidate(ctx context.Context, reason string) {
	m.generation.Add(1)

	m.opMu.Lock()
	var p pending
	if m.Snapshot().State == StateAuthenticated {
		m.expire(ctx, &p, reason)
	} else if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear credential record on invalidate", zap.Error(err))
	}
	m.opMu.Unlock()

	m.publish(ctx, p)
}

// Revalidate is the body of the re-validation tick. It only acts on an
// authenticated session, so repeated ticks after an expiry are no-ops.
func (m *Manager) Revalidate(ctx context.Context) {
	m.opMu.Lock()
	var p pending
	m.revalidate(ctx, &p)
	m.opMu.Unlock()

	m.publish(ctx, p)
}

func (m *Manager) revalidate(ctx context.Context, p *pending) {
	cur := m.Snapshot()
	if !cur.Authenticated() {
		return
	}
	now := m.now()

	if !cur.Persisted {
		if !cur.Session.ExpiresAt.After(now) {
			m.expire(ctx, p, ErrExpired.Error())
		}
		return
	}

	record, ok, err := m.store.Read(ctx)
	if err != nil {
		if cur.Session.ExpiresAt.After(now) {
			m.logger.Warn("credential storage unavailable during revalidation", zap.Error(err))
			return
		}
		m.expire(ctx, p, ErrExpired.Error())
		return
	}
	if !ok {
		m.expire(ctx, p, ErrExpired.Error())
		return
	}

	sess, err := m.sessionFromRecord(record, now)
	if err != nil {
		m.logger.Debug("persisted credential rejected", zap.Error(err))
		m.expire(ctx, p, ErrExpired.Error())
		return
	}
	if !sess.sameAs(cur.Session) {
		m.transition(p, StateAuthenticated, sess, true)
	}
}

func (m *Manager) rehydrate(ctx context.Context) {
	m.opMu.Lock()
	var p pending
	m.restore(ctx, &p)
	m.opMu.Unlock()

	m.publish(ctx, p)
}

func (m *Manager) restore(ctx context.Context, p *pending) {
	if m.Snapshot().State != StateAnonymous {
		return
	}

	m.transition(p, StateLoading, nil, false)

	record, ok, err := m.store.Read(ctx)
	if err != nil {
		m.logger.Warn("credential storage unavailable during startup", zap.Error(err))
		m.transition(p, StateAnonymous, nil, false)
		return
	}
	if !ok {
		m.transition(p, StateAnonymous, nil, false)
		return
	}

	sess, err := m.sessionFromRecord(record, m.now())
	if err != nil {
		m.logger.Debug("persisted credential rejected", zap.Error(err))
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("clear rejected credential record", zap.Error(err))
		}
		m.transition(p, StateAnonymous, nil, false)
		return
	}
	m.transition(p, StateAuthenticated, sess, true)
}

func (m *Manager) login(ctx context.Context, gen uint64, token string, role auth.Role, ttlSeconds int) error {
	m.opMu.Lock()
	var p pending
	err := m.applyLogin(ctx, &p, gen, token, role, ttlSeconds)
	m.opMu.Unlock()

	m.publish(ctx, p)
	return err
}

func (m *Manager) applyLogin(ctx context.Context, p *pending, gen uint64, token string, role auth.Role, ttlSeconds int) error {
	if gen != m.generation.Load() {
		return ErrLoginSuperseded
	}

	claims, err := auth.Decode(token)
	if err != nil {
		m.logger.Debug("login token rejected", zap.Error(err))
		return err
	}
	if role == "" {
		role = auth.Role(claims.AudienceRole)
	}
	if !role.IsValid() {
		m.logger.Debug("login role rejected", zap.String("role", string(role)))
		return errInvalidRole
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = m.defaultTTL
	}
	sess := &Session{
		Token:     token,
		SubjectID: claims.SubjectID,
		Role:      role,
		ExpiresAt: m.now().Add(ttl).Truncate(time.Second),
	}

	persisted := true
	record := credentials.Record{Token: sess.Token, Role: string(sess.Role), ExpiresAt: sess.ExpiresAt}
	if err := m.store.Persist(ctx, record, ttl); err != nil {
		persisted = false
		m.logger.Warn("credential storage unavailable; session kept in memory only", zap.Error(err))
	}

	m.transition(p, StateAuthenticated, sess, persisted)
	return nil
}

// expire moves an authenticated session through expired to anonymous and
// raises the one-shot expiry event. Callers hold opMu.
func (m *Manager) expire(ctx context.Context, p *pending, reason string) {
	cur := m.Snapshot()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear expired credential record", zap.Error(err))
	}

	m.transition(p, StateExpired, nil, false)
	m.transition(p, StateAnonymous, nil, false)

	m.stateMu.Lock()
	m.notice = NoticeSessionExpired
	m.stateMu.Unlock()

	m.logger.Info("session expired", zap.String("reason", reason), zap.String("subject_id", cur.Session.GetSubjectID()))
	*p = append(*p, events.New(events.EventSessionExpired, m.now(), events.ExpiredPayload{
		Reason:       reason,
		RedirectTo:   m.loginPath,
		SubjectID:    cur.Session.GetSubjectID(),
		WasPersisted: cur.Persisted,
	}))
}

func (m *Manager) sessionFromRecord(record credentials.Record, now time.Time) (*Session, error) {
	if !record.LiveAt(now) {
		return nil, ErrExpired
	}
	claims, err := auth.Decode(record.Token)
	if err != nil {
		return nil, err
	}
	role, ok := auth.ParseRole(record.Role)
	if !ok {
		return nil, errInvalidRole
	}
	return &Session{
		Token:     record.Token,
		SubjectID: claims.SubjectID,
		Role:      role,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (m *Manager) transition(p *pending, state State, sess *Session, persisted bool) {
	from := m.Snapshot().State
	m.setState(state, sess, persisted)
	m.metrics.RecordTransition(string(from), string(state))
	m.logger.Info("session transition", zap.String("from", string(from)), zap.String("to", string(state)))
	*p = append(*p, m.stateEvent())
}

func (m *Manager) setState(state State, sess *Session, persisted bool) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.snap = Snapshot{
		Version:   m.snap.Version + 1,
		State:     state,
		Session:   sess,
		Persisted: persisted,
	}
}

func (m *Manager) stateEvent() events.Event {
	return events.New(events.EventSessionStateChanged, m.now(), m.Snapshot())
}

func (m *Manager) publish(ctx context.Context, p pending) {
	for _, evt := range p {
		_ = m.dispatcher.Publish(ctx, evt)
	}
}

func (m *Manager) startTicker(ctx context.Context) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	if m.cancel != nil {
		return
	}

	tickCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done

	go func() {
		defer close(done)
		defer m.stopTicker(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				m.Revalidate(tickCtx)
			}
		}
	}()
}

// stopTicker forgets the tick owning done, so a tick ended by its Init
// context can be restarted by a later Init.
func (m *Manager) stopTicker(done chan struct{}) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	if m.done != done {
		return
	}
	m.cancel()
	m.cancel, m.done = nil, nil
}
