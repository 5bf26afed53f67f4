package sqlite

import (
	"context"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
)

type tripsRepo struct {
	db dbtx
}

func (r *tripsRepo) CreateTrip(ctx context.Context, t domain.Trip) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trips (id, owner_id, name, privacy, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name, string(t.Privacy), t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *tripsRepo) GetTripByID(ctx context.Context, id string) (domain.Trip, error) {
	var t domain.Trip
	var privacy string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, privacy, created_at, updated_at
		 FROM trips WHERE id = ?`, id).
		Scan(&t.ID, &t.OwnerID, &t.Name, &privacy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Trip{}, mapNotFound(err)
	}
	t.Privacy = domain.Privacy(privacy)
	return t, nil
}
