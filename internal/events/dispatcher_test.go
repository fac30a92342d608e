package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherFanOutAndUnsubscribe(t *testing.T) {
	d := NewInMemoryDispatcher()
	var first, second int

	unsubscribe := d.Subscribe(EventSessionStateChanged, func(context.Context, Event) error {
		first++
		return nil
	})
	d.Subscribe(EventSessionStateChanged, func(context.Context, Event) error {
		second++
		return nil
	})

	evt := New(EventSessionStateChanged, time.Now(), nil)
	require.NoError(t, d.Publish(context.Background(), evt))

	unsubscribe()
	unsubscribe()
	require.NoError(t, d.Publish(context.Background(), evt))

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	var reported []error
	d := NewInMemoryDispatcher(WithErrorHandler(func(_ Event, err error) {
		reported = append(reported, err)
	}))
	boom := errors.New("boom")
	var called bool

	d.Subscribe(EventSessionExpired, func(context.Context, Event) error { return boom })
	d.Subscribe(EventSessionExpired, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventSessionExpired, time.Now(), ExpiredPayload{Reason: "expired"})))
	assert.True(t, called)
	assert.Equal(t, []error{boom}, reported)
}

func TestNewAssignsIDs(t *testing.T) {
	a := New(EventSessionExpired, time.Now(), nil)
	b := New(EventSessionExpired, time.Now(), nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
