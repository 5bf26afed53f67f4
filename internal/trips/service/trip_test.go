package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/pkg/idx"
)

func TestCreateTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("owner joins immediately", func(t *testing.T) {
		owner := env.createUser(t, "owner@example.com", "Owner")
		trip, err := env.trips.CreateTrip(ctx, owner.ID, owner.Email, owner.Name, "Norway Fjords", domain.PrivacyFriendsOnly)
		require.NoError(t, err)
		require.Equal(t, owner.ID, trip.OwnerID)
		require.Equal(t, domain.PrivacyFriendsOnly, trip.Privacy)

		m := env.membership(t, trip.ID, owner.ID)
		require.True(t, m.Joined())
		require.Equal(t, domain.RoleOwner, m.Role)
	})

	t.Run("creates the local account on first contact", func(t *testing.T) {
		newID := idx.New().String()
		trip, err := env.trips.CreateTrip(ctx, newID, "Fresh@Example.com", "Fresh", "First Trip", "")
		require.NoError(t, err)
		require.Equal(t, domain.PrivacyPrivate, trip.Privacy)

		u, err := env.store.Users().GetUserByID(ctx, newID)
		require.NoError(t, err)
		require.Equal(t, "fresh@example.com", u.Email)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		owner := env.createUser(t, "blank@example.com", "Blank")
		_, err := env.trips.CreateTrip(ctx, owner.ID, owner.Email, owner.Name, "   ", domain.PrivacyPrivate)
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("rejects unknown privacy", func(t *testing.T) {
		owner := env.createUser(t, "privacy@example.com", "P")
		_, err := env.trips.CreateTrip(ctx, owner.ID, owner.Email, owner.Name, "Trip", domain.Privacy("secret"))
		require.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestGetTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	trip := env.createTrip(t, owner, "Scottish Highlands")

	t.Run("member reads the trip", func(t *testing.T) {
		got, err := env.trips.GetTrip(ctx, trip.ID, owner.ID)
		require.NoError(t, err)
		require.Equal(t, trip.ID, got.ID)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		stranger := env.createUser(t, "stranger@example.com", "S")
		_, err := env.trips.GetTrip(ctx, trip.ID, stranger.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown trip", func(t *testing.T) {
		_, err := env.trips.GetTrip(ctx, idx.New().String(), owner.ID)
		require.ErrorIs(t, err, ErrTripNotFound)
	})
}

func TestListMembers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	trip := env.createTrip(t, owner, "Okavango Delta")

	joined := env.createUser(t, "joined@example.com", "Joined")
	_, err := env.invites.InviteByEmail(ctx, trip.ID, joined.Email, domain.RoleEditor, owner.ID)
	require.NoError(t, err)
	raw := tokenFromLink(t, env.mailer.last(t).Link)
	_, _, err = env.invites.AcceptByToken(ctx, raw, joined.ID, joined.Email)
	require.NoError(t, err)

	pending := env.createUser(t, "pending@example.com", "Pending")
	_, err = env.invites.InviteByEmail(ctx, trip.ID, pending.Email, domain.RoleViewer, owner.ID)
	require.NoError(t, err)

	t.Run("lists owner first, includes pending invitees", func(t *testing.T) {
		members, err := env.trips.ListMembers(ctx, trip.ID, owner.ID)
		require.NoError(t, err)
		require.Len(t, members, 3)
		require.Equal(t, owner.ID, members[0].Membership.UserID)
		require.Equal(t, domain.RoleOwner, members[0].Membership.Role)

		byID := map[string]TripMember{}
		for _, m := range members {
			byID[m.Membership.UserID] = m
		}
		require.True(t, byID[joined.ID].Membership.Joined())
		require.True(t, byID[pending.ID].Membership.Pending())
		require.Equal(t, "Pending", byID[pending.ID].User.Name)
	})

	t.Run("joined member may list", func(t *testing.T) {
		_, err := env.trips.ListMembers(ctx, trip.ID, joined.ID)
		require.NoError(t, err)
	})

	t.Run("pending invitee may not list", func(t *testing.T) {
		_, err := env.trips.ListMembers(ctx, trip.ID, pending.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("stranger may not list", func(t *testing.T) {
		stranger := env.createUser(t, "stranger@example.com", "S")
		_, err := env.trips.ListMembers(ctx, trip.ID, stranger.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})
}
