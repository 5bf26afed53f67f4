package service

import (
	"context"
	"errors"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
)

// NotificationService is the read side of the inbox. Writes happen inside the
// invitation workflow transactions; here the user only lists and marks read.
type NotificationService struct {
	Store store.Store
}

// List returns the caller's inbox, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	return s.Store.Notifications().ListUserNotifications(ctx, userID, unreadOnly)
}

// MarkRead flips read=true on one of the caller's notifications. Marking an
// already-read entry is a no-op success.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.Store.Notifications().GetNotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	return s.Store.Notifications().MarkNotificationRead(ctx, notificationID)
}
