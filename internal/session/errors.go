package session

import "errors"

var (
	// ErrLoginRejected is the only login failure surfaced to the login form.
	ErrLoginRejected = errors.New("invalid credentials")

	// ErrLoginSuperseded is returned when a logout happened while the login request was in flight.
	ErrLoginSuperseded = errors.New("login superseded by logout")

	// ErrExpired is the reason attached to sessions ended by the re-validation tick.
	ErrExpired = errors.New("session expired")

	// ErrNoAuthenticator is returned by Authenticate when no backend client is wired.
	ErrNoAuthenticator = errors.New("no authenticator configured")

	errInvalidRole = errors.New("role outside the closed role set")
)

// NoticeSessionExpired is shown once on the login page after an expiry.
const NoticeSessionExpired = "session expired"
