package credentials

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreIntegration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS credential_records (
            namespace  TEXT PRIMARY KEY,
            token      TEXT NOT NULL,
            role       TEXT NOT NULL,
            expires_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	require.NoError(t, err)

	clock := newClock()
	store := NewPostgresStore(pool, "test-"+uuid.NewString(), WithClock(clock.Now))
	t.Cleanup(func() { _ = store.Clear(context.Background()) })

	_, ok, err := store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	record := Record{Token: "a.b.c", Role: "MANAGER", ExpiresAt: clock.Now().Add(time.Hour)}
	require.NoError(t, store.Persist(ctx, record, time.Hour))

	record.Role = "USER"
	require.NoError(t, store.Persist(ctx, record, time.Hour))

	got, ok, err := store.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "USER", got.Role)

	clock.Advance(2 * time.Hour)
	_, ok, err = store.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx))
}
