package events

import (
	"context"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler) (unsubscribe func())
}

type listener struct {
	id      uint64
	handler EventHandler
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[EventType][]listener
	onError   func(Event, error)
}

// Option customizes the dispatcher.
type Option func(*inMemoryDispatcher)

// WithErrorHandler receives handler failures; other handlers still run.
func WithErrorHandler(fn func(Event, error)) Option {
	return func(d *inMemoryDispatcher) {
		d.onError = fn
	}
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(opts ...Option) Dispatcher {
	d := &inMemoryDispatcher{
		listeners: make(map[EventType][]listener),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish synchronously invokes handlers for the given event.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]listener{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, l := range handlers {
		if err := l.handler(ctx, event); err != nil && d.onError != nil {
			d.onError(event, err)
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.listeners[eventType] = append(d.listeners[eventType], listener{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(eventType, id) })
	}
}

func (d *inMemoryDispatcher) remove(eventType EventType, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	current := d.listeners[eventType]
	kept := make([]listener, 0, len(current))
	for _, l := range current {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	d.listeners[eventType] = kept
}
