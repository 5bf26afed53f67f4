package domain

import "time"

// Privacy controls who can discover a trip. It carries no membership
// invariant of its own; membership rows are always authoritative.
type Privacy string

const (
	PrivacyPrivate     Privacy = "private"
	PrivacyFriendsOnly Privacy = "friends-only"
	PrivacyPublic      Privacy = "public"
)

// ValidPrivacy reports whether p is one of the known privacy levels.
func ValidPrivacy(p Privacy) bool {
	switch p {
	case PrivacyPrivate, PrivacyFriendsOnly, PrivacyPublic:
		return true
	}
	return false
}

type Trip struct {
	ID        string
	OwnerID   string
	Name      string
	Privacy   Privacy
	CreatedAt time.Time
	UpdatedAt time.Time
}
