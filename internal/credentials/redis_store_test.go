package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, clock *fakeClock) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "desk-1", WithClock(clock.Now)), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	clock := newClock()
	store, mr := newRedisStore(t, clock)
	ctx := context.Background()

	record := Record{Token: "a.b.c", Role: "USER", ExpiresAt: clock.Now().Add(time.Hour)}
	require.NoError(t, store.Persist(ctx, record, time.Hour))

	assert.Equal(t, "USER", mr.HGet(redisKeyPrefix+"desk-1", fieldRole))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"desk-1"))

	got, ok, err := store.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Token, got.Token)
	assert.True(t, record.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists(redisKeyPrefix+"desk-1"))
}

func TestRedisStoreKeyExpires(t *testing.T) {
	clock := newClock()
	store, mr := newRedisStore(t, clock)
	ctx := context.Background()

	require.NoError(t, store.Persist(ctx, Record{Token: "a.b.c", Role: "USER", ExpiresAt: clock.Now().Add(time.Minute)}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreRefusesExpiredRecord(t *testing.T) {
	clock := newClock()
	store, _ := newRedisStore(t, clock)
	ctx := context.Background()

	require.NoError(t, store.Persist(ctx, Record{Token: "a.b.c", Role: "USER", ExpiresAt: clock.Now().Add(time.Minute)}, time.Hour))
	clock.Advance(5 * time.Minute)

	_, ok, err := store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreUnavailable(t *testing.T) {
	clock := newClock()
	store, mr := newRedisStore(t, clock)
	mr.Close()

	err := store.Persist(context.Background(), Record{Token: "t", ExpiresAt: clock.Now().Add(time.Hour)}, time.Hour)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, ok, err := store.Read(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, ok)
}
