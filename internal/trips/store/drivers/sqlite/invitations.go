package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, trip_id, email, role, token_hash, invited_by, expires_at, used_at, created_at, updated_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, trip_id, email, role, token_hash, invited_by, expires_at, used_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TripID, inv.Email, string(inv.Role), inv.TokenHash,
		inv.InvitedBy, inv.ExpiresAt, mapOptionalTime(inv.UsedAt),
		inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ?`, hash)
	return scanInvitation(row)
}

func (r *invitationsRepo) DeleteUnusedInvitations(ctx context.Context, tripID, email string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE trip_id = ? AND email = ? AND used_at IS NULL`,
		tripID, email)
	return err
}

func (r *invitationsRepo) MarkInvitationUsed(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET used_at = ?, updated_at = ?
		 WHERE id = ? AND used_at IS NULL`,
		now, now, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *invitationsRepo) ListExpiredUnused(ctx context.Context) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE used_at IS NULL AND expires_at < ?`,
		time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	return err
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var inv domain.Invitation
	var role string
	var used sql.NullTime
	err := row.Scan(&inv.ID, &inv.TripID, &inv.Email, &role, &inv.TokenHash,
		&inv.InvitedBy, &inv.ExpiresAt, &used, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invitation{}, store.ErrNotFound
		}
		return domain.Invitation{}, err
	}
	inv.Role = domain.Role(role)
	inv.UsedAt = mapNullTimePtr(used)
	return inv, nil
}
