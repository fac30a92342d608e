package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/taskboard-console/internal/session"
)

type fakeSource struct {
	mu   sync.Mutex
	snap session.Snapshot
	fns  []func(session.Snapshot)
}

func (s *fakeSource) Snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *fakeSource) Subscribe(fn func(session.Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
	idx := len(s.fns) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.fns[idx] = nil
	}
}

func (s *fakeSource) emit(snap session.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	fns := append([]func(session.Snapshot){}, s.fns...)
	s.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(snap)
		}
	}
}

func TestWatcherTracksNewestSnapshot(t *testing.T) {
	src := &fakeSource{snap: session.Snapshot{Version: 3, State: session.StateAnonymous}}
	w := NewWatcher(src)
	assert.Equal(t, uint64(3), w.Snapshot().Version)

	src.emit(session.Snapshot{Version: 4, State: session.StateLoading})
	assert.Equal(t, session.StateLoading, w.Snapshot().State)

	w.observe(session.Snapshot{Version: 2, State: session.StateAuthenticated})
	assert.Equal(t, session.StateLoading, w.Snapshot().State)
}

func TestWatcherCloseStopsUpdates(t *testing.T) {
	src := &fakeSource{snap: session.Snapshot{State: session.StateAnonymous}}
	w := NewWatcher(src)
	w.Close()

	src.emit(session.Snapshot{Version: 9, State: session.StateLoading})
	assert.Equal(t, session.StateAnonymous, w.Snapshot().State)
	assert.Equal(t, uint64(0), w.Snapshot().Version)
}
