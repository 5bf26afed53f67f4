package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
	"github.com/wayfarerhq/wayfarer/pkg/cryptox"
	"github.com/wayfarerhq/wayfarer/pkg/idx"
	"github.com/wayfarerhq/wayfarer/pkg/slogx"
)

// DefaultInviteTTL is how long an invitation link stays redeemable.
const DefaultInviteTTL = 7 * 24 * time.Hour

// TokenService mints and redeems single-use invitation tokens. Tokens are
// 256-bit random values; only their SHA-256 fingerprint is stored, so the raw
// token exists once, inside the invitation link.
type TokenService struct {
	Store store.Store
	TTL   time.Duration // zero means DefaultInviteTTL
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultInviteTTL
}

// Issue mints a fresh invitation token for (tripID, email). Any prior unused
// token for the pair is invalidated in the same transaction, keeping "one
// active token per invitee" true. Returns the raw token exactly once.
func (s *TokenService) Issue(
	ctx context.Context,
	tripID string,
	email string,
	role domain.Role,
	issuerID string,
) (string, domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return "", domain.Invitation{}, err
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:        idx.New().String(),
		TripID:    tripID,
		Email:     domain.NormalizeEmail(email),
		Role:      role,
		TokenHash: cryptox.FingerprintToken(raw),
		InvitedBy: issuerID,
		ExpiresAt: now.Add(s.ttl()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().DeleteUnusedInvitations(ctx, inv.TripID, inv.Email); err != nil {
			return err
		}
		return tx.Invitations().CreateInvitation(ctx, inv)
	})
	if err != nil {
		log.Error("failed to store invitation",
			slog.String("trip_id", tripID),
			slog.Any("error", err),
		)
		return "", domain.Invitation{}, err
	}

	log.Debug("invitation token issued",
		slog.String("invitation_id", inv.ID),
		slog.String("trip_id", tripID),
		slog.String("role", string(role)),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return raw, inv, nil
}

// Redeem validates a presented token and returns its record. Expiry is
// checked before used_at, so an expired-but-used token reports expired.
func (s *TokenService) Redeem(ctx context.Context, raw string) (domain.Invitation, error) {
	inv, err := s.lookup(ctx, raw)
	if err != nil {
		return domain.Invitation{}, err
	}
	if inv.Used() {
		return domain.Invitation{}, ErrInviteAlreadyUsed
	}
	return inv, nil
}

// lookup fetches the record for a raw token, reporting only NotFound and
// Expired. Callers that tolerate an already-used token (the accept race)
// check Used() themselves.
func (s *TokenService) lookup(ctx context.Context, raw string) (domain.Invitation, error) {
	if raw == "" {
		return domain.Invitation{}, ErrInviteNotFound
	}

	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInviteNotFound
		}
		return domain.Invitation{}, err
	}
	if inv.Expired(time.Now().UTC()) {
		return domain.Invitation{}, ErrInviteExpired
	}
	return inv, nil
}

// MarkUsed consumes the token. Losing the race to another accept is benign:
// the conditional update affects zero rows and we report consumed=false
// without an error.
func (s *TokenService) MarkUsed(ctx context.Context, invitationID string) (bool, error) {
	return s.Store.Invitations().MarkInvitationUsed(ctx, invitationID)
}
