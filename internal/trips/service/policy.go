package service

import (
	"context"
	"errors"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
)

// Role and ownership checks shared by the services. All of them treat a
// missing membership row as ErrForbidden rather than leaking existence.

// canManageInvites allows the trip owner and accepted editors to invite.
// A pending editor has not joined yet and may not invite; viewers never can.
func canManageInvites(ctx context.Context, st store.Store, tripID, userID string) error {
	m, err := st.Memberships().GetMembership(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}

	switch m.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleEditor:
		if m.Joined() {
			return nil
		}
	}
	return ErrForbidden
}

// canViewTrip allows any accepted member to read trip membership.
func canViewTrip(ctx context.Context, st store.Store, tripID, userID string) error {
	m, err := st.Memberships().GetMembership(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if !m.Joined() {
		return ErrForbidden
	}
	return nil
}
