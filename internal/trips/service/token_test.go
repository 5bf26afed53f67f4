package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/pkg/cryptox"
)

func TestTokenServiceIssueAndRedeem(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	trip := env.createTrip(t, owner, "Kyoto 2026")
	tokens := env.invites.Tokens

	t.Run("issued token round-trips through redeem", func(t *testing.T) {
		raw, inv, err := tokens.Issue(ctx, trip.ID, "Guest@Example.com", domain.RoleViewer, owner.ID)
		require.NoError(t, err)
		require.NotEmpty(t, raw)
		require.Equal(t, "guest@example.com", inv.Email)
		require.Equal(t, cryptox.FingerprintToken(raw), inv.TokenHash)
		require.WithinDuration(t, time.Now().UTC().Add(DefaultInviteTTL), inv.ExpiresAt, time.Minute)

		got, err := tokens.Redeem(ctx, raw)
		require.NoError(t, err)
		require.Equal(t, inv.ID, got.ID)
		require.False(t, got.Used())
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		_, err := tokens.Redeem(ctx, "no-such-token")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("empty token is not found", func(t *testing.T) {
		_, err := tokens.Redeem(ctx, "")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("reissue invalidates the previous token", func(t *testing.T) {
		first, _, err := tokens.Issue(ctx, trip.ID, "rotate@example.com", domain.RoleViewer, owner.ID)
		require.NoError(t, err)
		second, _, err := tokens.Issue(ctx, trip.ID, "rotate@example.com", domain.RoleEditor, owner.ID)
		require.NoError(t, err)

		_, err = tokens.Redeem(ctx, first)
		require.ErrorIs(t, err, ErrInviteNotFound)

		inv, err := tokens.Redeem(ctx, second)
		require.NoError(t, err)
		require.Equal(t, domain.RoleEditor, inv.Role)
	})

	t.Run("reissue for another trip leaves the token alone", func(t *testing.T) {
		other := env.createTrip(t, owner, "Lisbon 2027")

		raw, _, err := tokens.Issue(ctx, trip.ID, "both@example.com", domain.RoleViewer, owner.ID)
		require.NoError(t, err)
		_, _, err = tokens.Issue(ctx, other.ID, "both@example.com", domain.RoleViewer, owner.ID)
		require.NoError(t, err)

		_, err = tokens.Redeem(ctx, raw)
		require.NoError(t, err)
	})

	t.Run("mark used consumes exactly once", func(t *testing.T) {
		raw, inv, err := tokens.Issue(ctx, trip.ID, "once@example.com", domain.RoleViewer, owner.ID)
		require.NoError(t, err)

		consumed, err := tokens.MarkUsed(ctx, inv.ID)
		require.NoError(t, err)
		require.True(t, consumed)

		consumed, err = tokens.MarkUsed(ctx, inv.ID)
		require.NoError(t, err)
		require.False(t, consumed)

		_, err = tokens.Redeem(ctx, raw)
		require.ErrorIs(t, err, ErrInviteAlreadyUsed)
	})
}

func TestTokenServiceExpiry(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	trip := env.createTrip(t, owner, "Patagonia")
	tokens := env.invites.Tokens

	t.Run("expired token reports expired", func(t *testing.T) {
		raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)
		env.seedInvitation(t, domain.Invitation{
			TripID:    trip.ID,
			Email:     "late@example.com",
			Role:      domain.RoleViewer,
			TokenHash: cryptox.FingerprintToken(raw),
			InvitedBy: owner.ID,
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		})

		_, err = tokens.Redeem(ctx, raw)
		require.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("expired wins over already used", func(t *testing.T) {
		raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)
		env.seedInvitation(t, domain.Invitation{
			TripID:    trip.ID,
			Email:     "stale@example.com",
			Role:      domain.RoleViewer,
			TokenHash: cryptox.FingerprintToken(raw),
			InvitedBy: owner.ID,
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
			UsedAt:    timePtr(time.Now().UTC().Add(-2 * time.Hour)),
		})

		_, err = tokens.Redeem(ctx, raw)
		require.ErrorIs(t, err, ErrInviteExpired)
	})
}
