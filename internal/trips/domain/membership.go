package domain

import "time"

// Role is the permission tier a member holds on a trip.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ValidInviteRole reports whether r may be granted through an invitation.
// Ownership is established at trip creation and never via invite.
func ValidInviteRole(r Role) bool {
	return r == RoleEditor || r == RoleViewer
}

// Membership is the authoritative (trip, user) relationship. A nil JoinedAt
// means the membership is still pending acceptance.
type Membership struct {
	TripID    string
	UserID    string
	Role      Role
	InvitedBy string
	InvitedAt time.Time
	JoinedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pending reports whether the member has not yet accepted.
func (m Membership) Pending() bool { return m.JoinedAt == nil }

// Joined reports whether the member has accepted.
func (m Membership) Joined() bool { return m.JoinedAt != nil }
