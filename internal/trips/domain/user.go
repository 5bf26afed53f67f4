package domain

import "time"

// User mirrors the slice of the identity provider's account we need locally:
// enough to resolve "does this invitee already have an account" by email and
// to address inbox notifications. Credentials live with the IdP.
type User struct {
	ID             string
	Email          string // normalized (lowercased, trimmed)
	Name           string
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
