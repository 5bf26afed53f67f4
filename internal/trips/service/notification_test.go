package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/pkg/idx"
)

func TestNotificationList(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	guest := env.createUser(t, "guest@example.com", "Guest")

	tripA := env.createTrip(t, owner, "Trip A")
	tripB := env.createTrip(t, owner, "Trip B")
	_, err := env.invites.InviteByEmail(ctx, tripA.ID, guest.Email, domain.RoleViewer, owner.ID)
	require.NoError(t, err)
	_, err = env.invites.InviteByEmail(ctx, tripB.ID, guest.Email, domain.RoleViewer, owner.ID)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		list, err := env.notifications.List(ctx, guest.ID, false)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, tripB.ID, list[0].TripID)
		require.Equal(t, tripA.ID, list[1].TripID)
	})

	t.Run("unread filter hides read entries", func(t *testing.T) {
		list, err := env.notifications.List(ctx, guest.ID, true)
		require.NoError(t, err)
		require.Len(t, list, 2)

		require.NoError(t, env.notifications.MarkRead(ctx, list[0].ID, guest.ID))

		list, err = env.notifications.List(ctx, guest.ID, true)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, tripA.ID, list[0].TripID)
	})

	t.Run("empty inbox lists empty", func(t *testing.T) {
		list, err := env.notifications.List(ctx, owner.ID, false)
		require.NoError(t, err)
		require.Empty(t, list)
	})
}

func TestNotificationMarkRead(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	guest := env.createUser(t, "guest@example.com", "Guest")
	trip := env.createTrip(t, owner, "Marrakesh")
	_, err := env.invites.InviteByEmail(ctx, trip.ID, guest.Email, domain.RoleViewer, owner.ID)
	require.NoError(t, err)
	notif := env.inbox(t, guest.ID)[0]

	t.Run("owner of the notification marks it read", func(t *testing.T) {
		require.NoError(t, env.notifications.MarkRead(ctx, notif.ID, guest.ID))
		require.True(t, env.inbox(t, guest.ID)[0].Read)
	})

	t.Run("marking read twice is a no-op", func(t *testing.T) {
		require.NoError(t, env.notifications.MarkRead(ctx, notif.ID, guest.ID))
	})

	t.Run("read state does not touch status", func(t *testing.T) {
		require.Equal(t, domain.NotificationPending, env.inbox(t, guest.ID)[0].Status)
	})

	t.Run("someone else's notification is forbidden", func(t *testing.T) {
		require.ErrorIs(t, env.notifications.MarkRead(ctx, notif.ID, owner.ID), ErrForbidden)
	})

	t.Run("unknown notification", func(t *testing.T) {
		require.ErrorIs(t, env.notifications.MarkRead(ctx, idx.New().String(), guest.ID), ErrNotificationNotFound)
	})
}
