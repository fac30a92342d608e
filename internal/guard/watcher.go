package guard

import (
	"sync"

	"github.com/spec-kit/taskboard-console/internal/session"
)

// Source is the part of the session manager a Watcher needs.
type Source interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// Watcher caches the newest snapshot published by a Source. Notifications
// that arrive out of order are dropped by Version.
type Watcher struct {
	mu          sync.RWMutex
	snap        session.Snapshot
	unsubscribe func()
}

func NewWatcher(src Source) *Watcher {
	w := &Watcher{}
	w.unsubscribe = src.Subscribe(w.observe)
	w.observe(src.Snapshot())
	return w
}

// Snapshot returns the newest snapshot seen.
func (w *Watcher) Snapshot() session.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snap
}

// Close stops receiving notifications.
func (w *Watcher) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}

func (w *Watcher) observe(snap session.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if snap.Version >= w.snap.Version {
		w.snap = snap
	}
}
