package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_STORE", "")
	t.Setenv("SESSION_NAMESPACE", "")
	t.Setenv("SESSION_REVALIDATE_SECONDS", "")
	t.Setenv("SESSION_DEFAULT_TTL_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreCookie, cfg.Session.Store)
	assert.NotEmpty(t, cfg.Session.Namespace)
	assert.Equal(t, time.Minute, cfg.Session.RevalidateInterval())
	assert.Equal(t, time.Hour, cfg.Session.DefaultTTL())
	assert.Equal(t, "http://localhost:8080", cfg.Backend.UsersURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_STORE", "REDIS")
	t.Setenv("SESSION_NAMESPACE", "desk-7")
	t.Setenv("SESSION_REVALIDATE_SECONDS", "15")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, "desk-7", cfg.Session.Namespace)
	assert.Equal(t, 15*time.Second, cfg.Session.RevalidateInterval())
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "localstorage")

	_, err := Load()
	assert.Error(t, err)
}
