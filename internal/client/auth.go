package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard-console/internal/session"
)

var _ session.Authenticator = (*Client)(nil)

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type loginResponse struct {
	Token   string  `json:"token"`
	Role    string  `json:"role"`
	Expires seconds `json:"expires"`
}

// seconds accepts a JSON number or a numeric string.
type seconds int

func (s *seconds) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*s = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("expires: %w", err)
	}
	*s = seconds(n)
	return nil
}

// Login posts credentials to the users backend. Any non-2xx answer is
// session.ErrLoginRejected; its body is never inspected.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (session.LoginResult, error) {
	code, body, err := c.send(ctx, Users, fiber.MethodPost, "/login", loginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	}, false)
	if err != nil {
		return session.LoginResult{}, err
	}
	if code < 200 || code >= 300 {
		return session.LoginResult{}, session.ErrLoginRejected
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return session.LoginResult{}, fmt.Errorf("%w: malformed login response", session.ErrLoginRejected)
	}
	return session.LoginResult{Token: resp.Token, Role: resp.Role, ExpiresIn: int(resp.Expires)}, nil
}
