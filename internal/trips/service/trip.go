package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
	"github.com/wayfarerhq/wayfarer/pkg/idx"
	"github.com/wayfarerhq/wayfarer/pkg/slogx"
)

// TripService covers the minimal trip surface the membership workflow needs:
// creating a trip (which seeds the owner's joined membership row) and reading
// trips and their member lists.
type TripService struct {
	Store store.Store
}

// CreateTrip creates a trip owned by the caller. The owner's membership row
// is written in the same transaction with joined_at set, so the owner is a
// full member from the first moment and never goes through the invite flow.
func (s *TripService) CreateTrip(
	ctx context.Context,
	ownerID string,
	ownerEmail string,
	ownerName string,
	name string,
	privacy domain.Privacy,
) (domain.Trip, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Trip{}, ErrInvalidRequest
	}
	if privacy == "" {
		privacy = domain.PrivacyPrivate
	}
	if !domain.ValidPrivacy(privacy) {
		return domain.Trip{}, ErrInvalidRequest
	}

	now := time.Now().UTC()
	trip := domain.Trip{
		ID:      idx.New().String(),
		Name:    name,
		OwnerID: ownerID,
		Privacy: privacy,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := ensureUser(ctx, tx, ownerID, ownerEmail, ownerName); err != nil {
			return err
		}
		if err := tx.Trips().CreateTrip(ctx, trip); err != nil {
			return err
		}
		return tx.Memberships().CreateMembership(ctx, domain.Membership{
			TripID:    trip.ID,
			UserID:    ownerID,
			Role:      domain.RoleOwner,
			InvitedBy: ownerID,
			JoinedAt:  &now,
		})
	})
	if err != nil {
		return domain.Trip{}, err
	}

	log.Info("trip created",
		slog.String("trip_id", trip.ID),
		slog.String("owner_id", ownerID),
		slog.String("privacy", string(privacy)),
	)

	return trip, nil
}

// GetTrip returns a trip, gated on the caller being a joined member.
func (s *TripService) GetTrip(ctx context.Context, tripID, requestedBy string) (domain.Trip, error) {
	trip, err := s.Store.Trips().GetTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Trip{}, ErrTripNotFound
		}
		return domain.Trip{}, err
	}
	if err := canViewTrip(ctx, s.Store, tripID, requestedBy); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// TripMember is a membership row joined with the member's profile for
// display. Pending invitees appear with a nil JoinedAt.
type TripMember struct {
	Membership domain.Membership
	User       domain.User
}

// ListMembers returns a trip's members (owner first, then by join order),
// gated on the caller being a joined member.
func (s *TripService) ListMembers(ctx context.Context, tripID, requestedBy string) ([]TripMember, error) {
	if _, err := s.Store.Trips().GetTripByID(ctx, tripID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	if err := canViewTrip(ctx, s.Store, tripID, requestedBy); err != nil {
		return nil, err
	}

	rows, err := s.Store.Memberships().ListTripMembers(ctx, tripID)
	if err != nil {
		return nil, err
	}

	members := make([]TripMember, 0, len(rows))
	for _, m := range rows {
		u, err := s.Store.Users().GetUserByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Membership without a user row should not happen; skip
				// rather than fail the whole listing.
				continue
			}
			return nil, err
		}
		members = append(members, TripMember{Membership: m, User: u})
	}
	return members, nil
}
