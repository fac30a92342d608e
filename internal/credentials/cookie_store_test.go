package credentials

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
}

func TestCookieStoreRoundTrip(t *testing.T) {
	clock := newClock()
	store, err := NewCookieStore("http://localhost:3000", WithClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	record := Record{Token: "a.b.c", Role: "MANAGER", ExpiresAt: clock.Now().Add(time.Hour)}
	require.NoError(t, store.Persist(ctx, record, time.Hour))

	got, ok, err := store.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Token, got.Token)
	assert.Equal(t, record.Role, got.Role)
	assert.True(t, record.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieStoreTreatsExpiryAsAbsence(t *testing.T) {
	clock := newClock()
	store, err := NewCookieStore("http://localhost:3000", WithClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Persist(ctx, Record{Token: "a.b.c", Role: "USER", ExpiresAt: clock.Now().Add(time.Minute)}, time.Minute))
	clock.Advance(2 * time.Minute)

	got, ok, err := store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Record{}, got)
}

func TestCookieAttributes(t *testing.T) {
	secure, err := NewCookieStore("https://board.example.com/app")
	require.NoError(t, err)
	plain, err := NewCookieStore("http://localhost:3000")
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	for _, c := range secure.cookies(Record{Token: "t", Role: "USER", ExpiresAt: expires}, time.Hour) {
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, 3600, c.MaxAge)
	}
	for _, c := range plain.cookies(Record{Token: "t", Role: "USER", ExpiresAt: expires}, time.Hour) {
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.False(t, c.Secure)
	}
}

func TestCookieStoreRejectsBadOrigin(t *testing.T) {
	_, err := NewCookieStore("ftp://files")
	assert.Error(t, err)
	_, err = NewCookieStore("https://")
	assert.Error(t, err)
}

func TestCookieStoreRejectsNonPositiveTTL(t *testing.T) {
	store, err := NewCookieStore("http://localhost:3000")
	require.NoError(t, err)

	err = store.Persist(context.Background(), Record{Token: "t"}, 0)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
