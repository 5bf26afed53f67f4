package domain

import "time"

// NotificationType discriminates inbox entries. Only trip invites carry
// workflow semantics; other types are plain feed items.
type NotificationType string

const (
	NotificationTripInvite NotificationType = "trip_invite"
	NotificationTripUpdate NotificationType = "trip_update"
)

// NotificationStatus tracks the invite resolution state. Terminal statuses
// (accepted, rejected, revoked, expired) are never transitioned out of.
type NotificationStatus string

const (
	NotificationPending  NotificationStatus = "pending"
	NotificationAccepted NotificationStatus = "accepted"
	NotificationRejected NotificationStatus = "rejected"
	NotificationExpired  NotificationStatus = "expired"
	NotificationRevoked  NotificationStatus = "revoked"
)

// Notification is a per-user inbox entry. Notifications are retained as
// history and are never deleted, only resolved.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	TripID    string
	ActorID   string
	Message   string
	Read      bool
	Status    NotificationStatus
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}
