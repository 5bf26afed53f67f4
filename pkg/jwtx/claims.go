// Package jwtx verifies bearer tokens minted by the external identity
// provider. The service never issues tokens itself; it only checks the
// provider's signature and lifts the identity claims it needs.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("jwtx: token expired")
	ErrTokenInvalid = errors.New("jwtx: token invalid")
)

// Claims are the identity-provider claims the service consumes. Subject is
// the stable account id; Email is the verified address used for invitation
// matching (compared case-insensitively downstream).
type Claims struct {
	jwt.RegisteredClaims

	// Email is the account's address as known to the identity provider.
	Email string `json:"email,omitempty"`

	// EmailConfirmed gates flows that require a verified address, such as
	// completing signup from an invitation link.
	EmailConfirmed bool `json:"email_confirmed,omitempty"`

	// Name is the display name, informational only.
	Name string `json:"name,omitempty"`
}

// ValidateExpiry checks exp against the current time. Parsing already
// validates expiry; this exists for callers holding a Claims value.
func (c Claims) ValidateExpiry() error {
	if c.ExpiresAt == nil {
		return nil
	}
	if time.Now().After(c.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	return nil
}
