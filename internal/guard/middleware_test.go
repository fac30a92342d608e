package guard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/credentials"
	"github.com/spec-kit/taskboard-console/internal/session"
	apperrors "github.com/spec-kit/taskboard-console/pkg/util"
)

func newGuardedApp(t *testing.T) (*fiber.App, *session.Manager) {
	t.Helper()
	store, err := credentials.NewCookieStore("http://localhost:3000")
	require.NoError(t, err)
	manager := session.NewManager(store)
	t.Cleanup(manager.Dispose)

	watcher := NewWatcher(manager)
	t.Cleanup(watcher.Close)
	mw := NewMiddleware(watcher, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}})
		},
	})
	ok := func(c *fiber.Ctx) error {
		snap, found := SnapshotFrom(c)
		return c.JSON(fiber.Map{"admitted": found, "state": snap.State})
	}
	app.Get("/board", mw.Authenticated(), ok)
	app.Get("/projects/new", mw.Role(auth.RoleManager), ok)
	app.Get("/login", mw.PublicOnly(), ok)
	return app, manager
}

func login(t *testing.T, m *session.Manager, role auth.Role) {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "42"}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.True(t, m.Login(context.Background(), token, role, 600))
}

func TestAuthenticatedRedirectsVisitors(t *testing.T) {
	app, _ := newGuardedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/board?tab=mine", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?from=%2Fboard%3Ftab%3Dmine", resp.Header.Get("Location"))
}

func TestAuthenticatedAdmitsSession(t *testing.T) {
	app, manager := newGuardedApp(t)
	login(t, manager, auth.RoleUser)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/board", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["admitted"])
	assert.Equal(t, "authenticated", body["state"])
}

func TestRoleDeniesWithoutRedirect(t *testing.T) {
	app, manager := newGuardedApp(t)
	login(t, manager, auth.RoleUser)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/projects/new", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ACCESS_DENIED")
	assert.Contains(t, string(raw), "required role MANAGER")
}

func TestRoleAdmitsManager(t *testing.T) {
	app, manager := newGuardedApp(t)
	login(t, manager, auth.RoleManager)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/projects/new", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPublicOnlySendsSessionsHome(t *testing.T) {
	app, manager := newGuardedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	login(t, manager, auth.RoleUser)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	manager.Logout(context.Background())
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/board", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

type loadingSource struct{}

func (loadingSource) Snapshot() session.Snapshot {
	return session.Snapshot{Version: 1, State: session.StateLoading}
}

func (loadingSource) Subscribe(func(session.Snapshot)) func() { return func() {} }

func TestLoadingRendersPlaceholder(t *testing.T) {
	mw := NewMiddleware(NewWatcher(loadingSource{}), nil)
	app := fiber.New()
	app.Get("/board", mw.Authenticated(), func(c *fiber.Ctx) error { return c.SendString("board") })
	app.Get("/login", mw.PublicOnly(), func(c *fiber.Ctx) error { return c.SendString("login") })

	for _, path := range []string{"/board", "/login"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"view":"loading"}}`, string(raw))
	}
}
