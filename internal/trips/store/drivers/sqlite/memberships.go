package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
)

type membershipsRepo struct {
	db dbtx
}

const membershipColumns = `trip_id, user_id, role, invited_by, invited_at, joined_at, created_at, updated_at`

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	now := time.Now().UTC()
	if m.InvitedAt.IsZero() {
		m.InvitedAt = now
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (trip_id, user_id, role, invited_by, invited_at, joined_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.TripID, m.UserID, string(m.Role), m.InvitedBy, m.InvitedAt,
		mapOptionalTime(m.JoinedAt), m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *membershipsRepo) UpsertPending(ctx context.Context, m domain.Membership) (domain.Membership, error) {
	now := time.Now().UTC()
	if m.InvitedAt.IsZero() {
		m.InvitedAt = now
	}

	// Insert-or-refresh on the (trip, user) key. The conditional DO UPDATE
	// leaves joined rows untouched; the read-back below detects that case.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (trip_id, user_id, role, invited_by, invited_at, joined_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, NULL, ?, ?)
		 ON CONFLICT (trip_id, user_id) DO UPDATE SET
		     role = excluded.role,
		     invited_by = excluded.invited_by,
		     invited_at = excluded.invited_at,
		     updated_at = excluded.updated_at
		 WHERE memberships.joined_at IS NULL`,
		m.TripID, m.UserID, string(m.Role), m.InvitedBy, m.InvitedAt, now, now)
	if err != nil {
		return domain.Membership{}, err
	}

	out, err := r.GetMembership(ctx, m.TripID, m.UserID)
	if err != nil {
		return domain.Membership{}, err
	}
	if out.Joined() {
		// A joined member is never downgraded back to pending by a re-invite.
		return domain.Membership{}, store.ErrAlreadyExists
	}
	return out, nil
}

func (r *membershipsRepo) AcceptMembership(ctx context.Context, tripID, userID string) (bool, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET joined_at = ?, updated_at = ?
		 WHERE trip_id = ? AND user_id = ? AND joined_at IS NULL`,
		now, now, tripID, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	// Zero rows affected: either already joined (benign) or no row at all.
	if _, err := r.GetMembership(ctx, tripID, userID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *membershipsRepo) GetMembership(ctx context.Context, tripID, userID string) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE trip_id = ? AND user_id = ?`,
		tripID, userID)
	return scanMembership(row)
}

func (r *membershipsRepo) ListTripMembers(ctx context.Context, tripID string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE trip_id = ?
		 ORDER BY CASE role WHEN 'owner' THEN 0 ELSE 1 END, created_at`,
		tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, tripID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE trip_id = ? AND user_id = ?`, tripID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanMembership(row rowScanner) (domain.Membership, error) {
	var m domain.Membership
	var role string
	var joined sql.NullTime
	err := row.Scan(&m.TripID, &m.UserID, &role, &m.InvitedBy, &m.InvitedAt,
		&joined, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Membership{}, store.ErrNotFound
		}
		return domain.Membership{}, err
	}
	m.Role = domain.Role(role)
	m.JoinedAt = mapNullTimePtr(joined)
	return m, nil
}
