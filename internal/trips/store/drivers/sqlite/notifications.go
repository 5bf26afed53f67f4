package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"

	"database/sql"
)

type notificationsRepo struct {
	db dbtx
}

const notificationColumns = `id, user_id, type, trip_id, actor_id, message, read, status, metadata, created_at, updated_at`

func (r *notificationsRepo) CreateNotification(ctx context.Context, n domain.Notification) error {
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = now
	}
	if n.Status == "" {
		n.Status = domain.NotificationPending
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, trip_id, actor_id, message, read, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Type), n.TripID, n.ActorID, n.Message,
		n.Read, string(n.Status), mapMetadataJSON(n.Metadata), n.CreatedAt, n.UpdatedAt)
	return err
}

func (r *notificationsRepo) GetNotificationByID(ctx context.Context, id string) (domain.Notification, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

func (r *notificationsRepo) ListUserNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationsRepo) RevokePendingNotifications(ctx context.Context, userID, tripID string, typ domain.NotificationType) error {
	return r.terminatePending(ctx, userID, tripID, typ, domain.NotificationRevoked)
}

func (r *notificationsRepo) ExpirePendingNotifications(ctx context.Context, userID, tripID string, typ domain.NotificationType) error {
	return r.terminatePending(ctx, userID, tripID, typ, domain.NotificationExpired)
}

// terminatePending bulk-moves pending entries to a terminal status. Terminal
// entries are always marked read so they stop counting as actionable.
func (r *notificationsRepo) terminatePending(ctx context.Context, userID, tripID string, typ domain.NotificationType, status domain.NotificationStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = ?, read = 1, updated_at = ?
		 WHERE user_id = ? AND trip_id = ? AND type = ? AND status = 'pending'`,
		string(status), time.Now().UTC(), userID, tripID, string(typ))
	return err
}

func (r *notificationsRepo) ResolveNotificationsBySubject(ctx context.Context, userID, tripID string, typ domain.NotificationType, status domain.NotificationStatus) error {
	// Constrained to pending/accepted so rejected or revoked entries are
	// never resurrected by a late resolve.
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = ?, read = 1, updated_at = ?
		 WHERE user_id = ? AND trip_id = ? AND type = ? AND status IN ('pending', 'accepted')`,
		string(status), time.Now().UTC(), userID, tripID, string(typ))
	return err
}

func (r *notificationsRepo) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
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

func scanNotification(row rowScanner) (domain.Notification, error) {
	var n domain.Notification
	var typ, status, metadata string
	err := row.Scan(&n.ID, &n.UserID, &typ, &n.TripID, &n.ActorID, &n.Message,
		&n.Read, &status, &metadata, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, store.ErrNotFound
		}
		return domain.Notification{}, err
	}
	n.Type = domain.NotificationType(typ)
	n.Status = domain.NotificationStatus(status)
	n.Metadata = mapMetadata(metadata)
	return n, nil
}
