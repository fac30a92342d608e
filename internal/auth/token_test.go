package auth

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func rawToken(header, payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload)) + ".c2ln"
}

func TestDecodeSignedToken(t *testing.T) {
	exp := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	token := mintToken(t, jwt.RegisteredClaims{
		Subject:   "42",
		Audience:  jwt.ClaimStrings{"MANAGER"},
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	claims, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.SubjectID)
	assert.Equal(t, "MANAGER", claims.AudienceRole)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestDecodeIgnoresSignature(t *testing.T) {
	token := mintToken(t, jwt.RegisteredClaims{Subject: "7"})
	tampered := token[:len(token)-4] + "AAAA"

	claims, err := Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.SubjectID)
}

func TestDecodeStringAudience(t *testing.T) {
	claims, err := Decode(rawToken(`{"alg":"HS512"}`, `{"sub":"u-1","aud":"USER"}`))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.SubjectID)
	assert.Equal(t, "USER", claims.AudienceRole)
	assert.True(t, claims.ExpiresAt.IsZero())
}

func TestDecodeUnsecuredToken(t *testing.T) {
	enc := base64.RawURLEncoding
	token := enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." + enc.EncodeToString([]byte(`{"sub":"9"}`)) + "."

	claims, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "9", claims.SubjectID)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"single segment":     "abc",
		"two segments":       "abc.def",
		"four segments":      "a.b.c.d",
		"bad base64 header":  "!!!." + base64.RawURLEncoding.EncodeToString([]byte(`{}`)) + ".sig",
		"bad base64 payload": base64.RawURLEncoding.EncodeToString([]byte(`{}`)) + ".%%%.sig",
		"bad base64 sig":     rawToken(`{}`, `{}`) + "*",
		"empty payload":      base64.RawURLEncoding.EncodeToString([]byte(`{}`)) + "..sig",
		"payload not json":   rawToken(`{}`, `not-json`),
		"payload array":      rawToken(`{}`, `["USER"]`),
		"numeric subject":    rawToken(`{}`, `{"sub":42}`),
		"truncated segments": "a.b.c",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := Decode(token)
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrDecode))

				var decodeErr *DecodeError
				assert.True(t, errors.As(err, &decodeErr))
				assert.NotEmpty(t, decodeErr.Reason)
			})
		})
	}
}
