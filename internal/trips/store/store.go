package store

import (
	"context"
	"errors"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and let services take
// just the slice they need in tests.
type Store interface {
	Users() Users
	Trips() Trips
	Memberships() Memberships
	Invitations() Invitations
	Notifications() Notifications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Prefer this
	// over Tx for multi-step workflow operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns an account by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up an account by normalized email. Callers must
	// normalize with domain.NormalizeEmail first; matching is exact on the
	// stored (already lowercased) value.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new account (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error
}

type Trips interface {
	// CreateTrip inserts a new trip row. The owner membership row is the
	// caller's responsibility and must be created in the same transaction.
	CreateTrip(ctx context.Context, t domain.Trip) error

	// GetTripByID returns a trip by id.
	GetTripByID(ctx context.Context, id string) (domain.Trip, error)
}

type Memberships interface {
	// CreateMembership inserts a row exactly as given. Used for the owner's
	// joined row at trip creation.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// UpsertPending inserts a pending membership or refreshes role/invited_by
	// on an existing pending row. Returns ErrAlreadyExists when the (trip,
	// user) row is already joined: a joined member is never downgraded back
	// to pending by a re-invite.
	UpsertPending(ctx context.Context, m domain.Membership) (domain.Membership, error)

	// AcceptMembership sets joined_at=now via a single conditional update on
	// `joined_at IS NULL`. The bool reports whether this call performed the
	// transition; false with a nil error means the row was already joined
	// (the caller treats that as idempotent success). ErrNotFound when no
	// row exists at all.
	AcceptMembership(ctx context.Context, tripID, userID string) (bool, error)

	// GetMembership returns the (trip, user) row in a single read.
	GetMembership(ctx context.Context, tripID, userID string) (domain.Membership, error)

	// ListTripMembers returns all membership rows for a trip, owner first.
	ListTripMembers(ctx context.Context, tripID string) ([]domain.Membership, error)

	// DeleteMembership removes the (trip, user) row. Ownership invariants
	// are enforced by the service layer before calling this.
	DeleteMembership(ctx context.Context, tripID, userID string) error
}

type Invitations interface {
	// CreateInvitation writes a new invite (token_hash is the SHA-256
	// fingerprint of the opaque token).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByTokenHash returns the invite regardless of used/expired
	// state so the caller can report a precise failure reason.
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// DeleteUnusedInvitations removes all unused invites for a (trip, email)
	// pair, keeping "at most one active token per invitee" true.
	DeleteUnusedInvitations(ctx context.Context, tripID, email string) error

	// MarkInvitationUsed sets used_at=now via a conditional update on
	// `used_at IS NULL`. The bool reports whether this call consumed the
	// token; false means it was already used (a benign race for the caller
	// to interpret).
	MarkInvitationUsed(ctx context.Context, id string) (bool, error)

	// ListExpiredUnused returns expired invites that were never consumed,
	// for housekeeping.
	ListExpiredUnused(ctx context.Context) ([]domain.Invitation, error)

	// DeleteInvitation removes a single invite by id.
	DeleteInvitation(ctx context.Context, id string) error
}

type Notifications interface {
	// CreateNotification inserts a new inbox entry.
	CreateNotification(ctx context.Context, n domain.Notification) error

	// GetNotificationByID returns an inbox entry by id.
	GetNotificationByID(ctx context.Context, id string) (domain.Notification, error)

	// ListUserNotifications returns a user's inbox, newest first.
	ListUserNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)

	// RevokePendingNotifications bulk-transitions matching pending entries to
	// revoked and marks them read. Used when a fresh invite supersedes a
	// stale one or a pending member is removed.
	RevokePendingNotifications(ctx context.Context, userID, tripID string, typ domain.NotificationType) error

	// ExpirePendingNotifications is the housekeeping variant: pending
	// entries transition to expired and are marked read.
	ExpirePendingNotifications(ctx context.Context, userID, tripID string, typ domain.NotificationType) error

	// ResolveNotificationsBySubject transitions matching entries to a
	// terminal accepted/rejected status and marks them read. Constrained to
	// `status IN (pending, accepted)` so a rejected or revoked entry can
	// never be resurrected.
	ResolveNotificationsBySubject(ctx context.Context, userID, tripID string, typ domain.NotificationType, status domain.NotificationStatus) error

	// MarkNotificationRead flips read=true. Ownership is checked by the
	// service layer.
	MarkNotificationRead(ctx context.Context, id string) error
}
