// Package guard decides what a request may see given the current session.
//
// Decisions are pure functions of a session.Snapshot. The fiber adapters in
// middleware.go read the snapshot from a Watcher, which is fed by the
// session manager's change notifications rather than by polling.
package guard

import (
	"net/url"
	"strings"

	"github.com/spec-kit/taskboard-console/internal/auth"
	"github.com/spec-kit/taskboard-console/internal/session"
)

// Outcome is what a guarded view should do.
type Outcome string

const (
	Render   Outcome = "render"
	Loading  Outcome = "loading"
	Redirect Outcome = "redirect"
	Deny     Outcome = "deny"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the result of a guard evaluation. Location is set for
// redirects; From carries the originally requested location so login can
// return there. RequiredRole is set for denials.
type Decision struct {
	Outcome      Outcome   `json:"outcome"`
	Location     string    `json:"location,omitempty"`
	From         string    `json:"from,omitempty"`
	RequiredRole auth.Role `json:"required_role,omitempty"`
}

// RequireAuthenticated renders for an authenticated session and sends
// everyone else to the login page.
func RequireAuthenticated(snap session.Snapshot, requested string) Decision {
	switch {
	case snap.State == session.StateLoading:
		return Decision{Outcome: Loading}
	case snap.Authenticated():
		return Decision{Outcome: Render}
	default:
		return toLogin(requested)
	}
}

// RequireRole is RequireAuthenticated plus a role check. An authenticated
// caller without the role is denied, not redirected.
func RequireRole(snap session.Snapshot, required auth.Role, requested string) Decision {
	d := RequireAuthenticated(snap, requested)
	if d.Outcome != Render {
		return d
	}
	if !auth.HasRole(snap.Principal(), required) {
		return Decision{Outcome: Deny, RequiredRole: required}
	}
	return d
}

// PublicOnly renders for visitors and sends authenticated users home.
func PublicOnly(snap session.Snapshot) Decision {
	switch {
	case snap.State == session.StateLoading:
		return Decision{Outcome: Loading}
	case snap.Authenticated():
		return Decision{Outcome: Redirect, Location: HomePath}
	default:
		return Decision{Outcome: Render}
	}
}

// Visible reports whether a role-gated fragment should be shown. With
// requireAll every role must be held, otherwise any one suffices.
func Visible(snap session.Snapshot, roles []auth.Role, requireAll bool) bool {
	if requireAll {
		return auth.AllRoles(snap.Principal(), roles...)
	}
	return auth.AnyRole(snap.Principal(), roles...)
}

// LoginLocation is the login page URL remembering requested.
func LoginLocation(requested string) string {
	if requested == "" || requested == LoginPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"from": {requested}}.Encode()
}

// SafeReturn returns from when it is a local path, or HomePath.
func SafeReturn(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return HomePath
	}
	if u, err := url.Parse(from); err != nil || u.Host != "" {
		return HomePath
	}
	return from
}

func toLogin(requested string) Decision {
	return Decision{Outcome: Redirect, Location: LoginLocation(requested), From: requested}
}
