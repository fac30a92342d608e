package credentials

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// Cookie names of the persisted layout.
const (
	CookieToken      = "token"
	CookieRole       = "role"
	CookieExpiration = "sessionExpiration"
)

// CookieStore keeps the record in a cookie jar scoped to the console origin.
// Cookies are strict same-site and HTTP-only, and secure on https origins.
type CookieStore struct {
	jar    http.CookieJar
	origin *url.URL
	now    func() time.Time
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore builds a store for origin, e.g. "https://board.local".
func NewCookieStore(origin string, opts ...Option) (*CookieStore, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("credential origin must be an http or https URL")
	}
	if u.Host == "" {
		return nil, errors.New("credential origin has no host")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &CookieStore{jar: jar, origin: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, now: o.now}, nil
}

// Secure reports whether cookies carry the secure flag.
func (s *CookieStore) Secure() bool {
	return s.origin.Scheme == "https"
}

func (s *CookieStore) Persist(_ context.Context, record Record, ttl time.Duration) error {
	if ttl <= 0 {
		return unavailable("persist cookies", errors.New("ttl must be positive"))
	}
	s.jar.SetCookies(s.origin, s.cookies(record, ttl))
	return nil
}

func (s *CookieStore) Read(_ context.Context) (Record, bool, error) {
	values := make(map[string]string, 3)
	for _, c := range s.jar.Cookies(s.origin) {
		values[c.Name] = c.Value
	}

	token := values[CookieToken]
	expiresAt, ok := parseExpiry(values[CookieExpiration])
	if token == "" || !ok {
		return Record{}, false, nil
	}

	record := Record{Token: token, Role: values[CookieRole], ExpiresAt: expiresAt}
	if !record.LiveAt(s.now()) {
		return Record{}, false, nil
	}
	return record, true, nil
}

func (s *CookieStore) Clear(_ context.Context) error {
	expired := make([]*http.Cookie, 0, 3)
	for _, name := range []string{CookieToken, CookieRole, CookieExpiration} {
		c := s.baseCookie(name, "")
		c.MaxAge = -1
		expired = append(expired, c)
	}
	s.jar.SetCookies(s.origin, expired)
	return nil
}

func (s *CookieStore) cookies(record Record, ttl time.Duration) []*http.Cookie {
	values := [][2]string{
		{CookieToken, record.Token},
		{CookieRole, record.Role},
		{CookieExpiration, formatExpiry(record.ExpiresAt)},
	}
	out := make([]*http.Cookie, 0, len(values))
	for _, kv := range values {
		c := s.baseCookie(kv[0], kv[1])
		c.MaxAge = int(ttl.Seconds())
		c.Expires = record.ExpiresAt
		out = append(out, c)
	}
	return out
}

func (s *CookieStore) baseCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure(),
		SameSite: http.SameSiteStrictMode,
	}
}
