package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
)

// HousekeepingService periodically sweeps expired, never-used invitation
// tokens: the matching pending inbox entries transition to expired and the
// token rows are deleted so the invitations table does not grow unbounded.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs the sweep.
// Non-blocking; call Stop() to gracefully shut the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker. Blocks until any
// in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep expires stale invitations one at a time. Each invite is independent -
// a failure on one won't stop the others, and a partially-swept invite is
// picked up again on the next tick.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	expired, err := s.Store.Invitations().ListExpiredUnused(ctx)
	if err != nil {
		s.Logger.Error("failed to list expired invitations", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	var swept int
	for _, inv := range expired {
		if err := s.expireInvitation(ctx, inv); err != nil {
			s.Logger.Error("failed to expire invitation",
				"invitation_id", inv.ID,
				"error", err,
			)
			continue
		}
		swept++
	}

	s.Logger.Info("housekeeping sweep completed",
		"expired_found", len(expired),
		"swept", swept,
	)
}

func (s *HousekeepingService) expireInvitation(ctx context.Context, inv domain.Invitation) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		// The invitee may never have registered; only an existing account
		// has an inbox entry to expire.
		user, err := tx.Users().GetUserByEmail(ctx, inv.Email)
		switch {
		case err == nil:
			if err := tx.Notifications().ExpirePendingNotifications(ctx, user.ID, inv.TripID, domain.NotificationTripInvite); err != nil {
				return err
			}
			// An expired invite leaves no pending membership behind either.
			m, err := tx.Memberships().GetMembership(ctx, inv.TripID, user.ID)
			if err == nil && m.Pending() {
				if err := tx.Memberships().DeleteMembership(ctx, inv.TripID, user.ID); err != nil {
					return err
				}
			} else if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		case errors.Is(err, store.ErrNotFound):
			// Token-only invite; nothing in the inbox.
		default:
			return err
		}

		return tx.Invitations().DeleteInvitation(ctx, inv.ID)
	})
}
