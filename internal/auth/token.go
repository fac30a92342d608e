package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrDecode matches every token decode failure.
var ErrDecode = errors.New("token decode failed")

// DecodeError describes why a bearer token could not be decoded.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode token: %s: %v", e.Reason, e.Err)
	}
	return "decode token: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports ErrDecode as a match so callers can use errors.Is.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Claims holds the identity claims read from a bearer token.
type Claims struct {
	SubjectID    string
	AudienceRole string
	ExpiresAt    time.Time
}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

var segmentNames = [3]string{"header", "payload", "signature"}

// Decode extracts the subject and audience claims from a JWT without verifying it.
// The signature is never checked and no network call is made; the backend owns verification.
func Decode(token string) (Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return Claims{}, &DecodeError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}

	var payload []byte
	for i, part := range parts {
		if i < 2 && part == "" {
			return Claims{}, &DecodeError{Reason: segmentNames[i] + " segment is empty"}
		}
		raw, err := segmentParser.DecodeSegment(part)
		if err != nil {
			return Claims{}, &DecodeError{Reason: segmentNames[i] + " segment is not base64url", Err: err}
		}
		if i == 1 {
			payload = raw
		}
	}

	var registered jwt.RegisteredClaims
	if err := json.Unmarshal(payload, &registered); err != nil {
		return Claims{}, &DecodeError{Reason: "payload is not valid JSON claims", Err: err}
	}

	claims := Claims{SubjectID: registered.Subject}
	if len(registered.Audience) > 0 {
		claims.AudienceRole = registered.Audience[0]
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
