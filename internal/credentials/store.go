// Package credentials persists the session credential record between
// session manager restarts.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStorageUnavailable wraps every write or read failure of a backend.
var ErrStorageUnavailable = errors.New("credential storage unavailable")

// Record is the persisted form of a session: bearer token, role and absolute expiry.
type Record struct {
	Token     string
	Role      string
	ExpiresAt time.Time
}

// LiveAt reports whether the record may still back a session at now.
func (r Record) LiveAt(now time.Time) bool {
	return r.Token != "" && r.ExpiresAt.After(now)
}

// Store is the credential store contract. Read returns ok=false both when no
// record exists and when the stored record has expired.
type Store interface {
	Persist(ctx context.Context, record Record, ttl time.Duration) error
	Read(ctx context.Context) (Record, bool, error)
	Clear(ctx context.Context) error
}

// Option customizes a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock injects the clock used for expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.now = clock
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func formatExpiry(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseExpiry(raw string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
