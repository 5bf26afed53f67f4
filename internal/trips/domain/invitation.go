package domain

import (
	"strings"
	"time"
)

// Invitation is a single-use emailed invite token. Only the SHA-256
// fingerprint of the opaque token is stored; the raw value is handed to the
// mailer once at issue time and never persisted.
//
// At most one unused invitation exists per (trip, normalized email) pair.
// Issuing a fresh one invalidates any prior unused rows for the pair.
type Invitation struct {
	ID        string
	TripID    string
	Email     string // normalized (lowercased, trimmed)
	Role      Role
	TokenHash string
	InvitedBy string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Used reports whether the invitation has already been consumed.
func (i Invitation) Used() bool { return i.UsedAt != nil }

// Expired reports whether the invitation is past its expiry at the given time.
func (i Invitation) Expired(now time.Time) bool { return now.After(i.ExpiresAt) }

// NormalizeEmail canonicalizes an email address for matching. Invitation
// emails are compared case-insensitively end to end.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
