package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	trip := env.createTrip(t, owner, "Camino de Santiago")

	hk := NewHousekeepingService(env.store, slog.Default(), time.Hour)

	t.Run("expires a registered invitee's pending state", func(t *testing.T) {
		guest := env.createUser(t, "guest@example.com", "Guest")
		inv, err := env.invites.InviteByEmail(ctx, trip.ID, guest.Email, domain.RoleViewer, owner.ID)
		require.NoError(t, err)

		// Age the invitation past its expiry.
		expireInvitation(t, env, inv)

		hk.sweep()

		_, err = env.store.Invitations().GetInvitationByTokenHash(ctx, inv.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = env.store.Memberships().GetMembership(ctx, trip.ID, guest.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		inbox := env.inbox(t, guest.ID)
		require.Len(t, pendingInvites(inbox, trip.ID), 0)
		require.Equal(t, domain.NotificationExpired, inbox[0].Status)
		require.True(t, inbox[0].Read)
	})

	t.Run("cleans token-only invites for unregistered addresses", func(t *testing.T) {
		inv, err := env.invites.InviteByEmail(ctx, trip.ID, "nobody@example.com", domain.RoleViewer, owner.ID)
		require.NoError(t, err)
		expireInvitation(t, env, inv)

		hk.sweep()

		_, err = env.store.Invitations().GetInvitationByTokenHash(ctx, inv.TokenHash)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("leaves live and consumed invites alone", func(t *testing.T) {
		live := env.createUser(t, "live@example.com", "Live")
		_, err := env.invites.InviteByEmail(ctx, trip.ID, live.Email, domain.RoleViewer, owner.ID)
		require.NoError(t, err)
		liveRaw := tokenFromLink(t, env.mailer.last(t).Link)

		joined := env.createUser(t, "joined@example.com", "Joined")
		joinedInv, err := env.invites.InviteByEmail(ctx, trip.ID, joined.Email, domain.RoleViewer, owner.ID)
		require.NoError(t, err)
		joinedRaw := tokenFromLink(t, env.mailer.last(t).Link)
		_, _, err = env.invites.AcceptByToken(ctx, joinedRaw, joined.ID, joined.Email)
		require.NoError(t, err)

		hk.sweep()

		_, err = env.invites.Tokens.Redeem(ctx, liveRaw)
		require.NoError(t, err)
		require.Len(t, pendingInvites(env.inbox(t, live.ID), trip.ID), 1)

		// A consumed token is history, not garbage.
		_, err = env.store.Invitations().GetInvitationByTokenHash(ctx, joinedInv.TokenHash)
		require.NoError(t, err)
	})
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	hk := NewHousekeepingService(env.store, slog.Default(), time.Hour)

	hk.Start()
	hk.Stop() // must not hang or panic
}

// expireInvitation replaces a live invitation row with an identical one whose
// expiry is in the past.
func expireInvitation(t *testing.T, env *testEnv, inv domain.Invitation) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, env.store.Invitations().DeleteUnusedInvitations(ctx, inv.TripID, inv.Email))
	inv.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	env.seedInvitation(t, inv)
}
