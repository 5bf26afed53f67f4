package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
	"github.com/wayfarerhq/wayfarer/pkg/idx"
	"github.com/wayfarerhq/wayfarer/pkg/mailx"
	"github.com/wayfarerhq/wayfarer/pkg/slogx"
)

// InvitationService orchestrates the invitation lifecycle: issuing tokens,
// keeping membership rows and inbox notifications in sync, and unwinding
// pending state on rejection or removal.
//
// State per (trip, invitee email) moves through:
// no invite -> token issued -> member pending -> accepted,
// or terminally to rejected / revoked / expired.
type InvitationService struct {
	Store  store.Store
	Tokens *TokenService
	Mailer mailx.Mailer

	// LinkBaseURL is the public base for invitation links,
	// e.g. "https://app.example.com/invitations". The raw token is appended
	// as a path segment.
	LinkBaseURL string
}

// InviteByEmail invites an address to a trip with the given role.
//
// Ordering matters: the token is issued before any membership mutation so a
// failed upsert leaves at worst an unused token with no visible invite, which
// is safely re-issuable. Email delivery failure is logged and swallowed - the
// invite stays redeemable via the link.
func (s *InvitationService) InviteByEmail(
	ctx context.Context,
	tripID string,
	email string,
	role domain.Role,
	inviterID string,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Invitation{}, ErrInvalidRequest
	}
	if !domain.ValidInviteRole(role) {
		return domain.Invitation{}, ErrInvalidRequest
	}
	normalized := domain.NormalizeEmail(email)

	// 2. The trip must exist.
	trip, err := s.Store.Trips().GetTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrTripNotFound
		}
		return domain.Invitation{}, err
	}

	// 3. Only the owner or an accepted editor may invite.
	if err := canManageInvites(ctx, s.Store, tripID, inviterID); err != nil {
		log.Warn("invite refused by policy",
			slog.String("trip_id", tripID),
			slog.String("inviter_id", inviterID),
		)
		return domain.Invitation{}, err
	}

	// 4. Resolve the invitee. A missing account is the not-yet-registered
	// flow: token only, membership and notification are created at signup.
	invitee, err := s.Store.Users().GetUserByEmail(ctx, normalized)
	hasAccount := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, err
	}

	// 5. A joined member is never re-invited.
	if hasAccount {
		m, err := s.Store.Memberships().GetMembership(ctx, tripID, invitee.ID)
		if err == nil && m.Joined() {
			return domain.Invitation{}, ErrAlreadyMember
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, err
		}
	}

	// 6. Issue the token. This invalidates any prior unused token for the
	// (trip, email) pair in the same transaction.
	raw, inv, err := s.Tokens.Issue(ctx, tripID, normalized, role, inviterID)
	if err != nil {
		return domain.Invitation{}, err
	}

	// 7. For an existing account: pending membership plus a fresh inbox
	// notification, superseding any stale pending one.
	if hasAccount {
		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Memberships().UpsertPending(ctx, domain.Membership{
				TripID:    tripID,
				UserID:    invitee.ID,
				Role:      role,
				InvitedBy: inviterID,
			})
			if err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					// Concurrent accept won the race between steps 5 and 7.
					return ErrAlreadyMember
				}
				return err
			}

			if err := tx.Notifications().RevokePendingNotifications(ctx, invitee.ID, tripID, domain.NotificationTripInvite); err != nil {
				return err
			}
			return tx.Notifications().CreateNotification(ctx, s.inviteNotification(ctx, inv, trip, invitee.ID, inviterID))
		})
		if err != nil {
			return domain.Invitation{}, err
		}
	}

	// 8. Ask the mailer to deliver the link. Non-fatal.
	s.sendInviteMail(ctx, raw, inv, trip)

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("trip_id", tripID),
		slog.String("role", string(role)),
		slog.Bool("invitee_has_account", hasAccount),
	)

	return inv, nil
}

// CompleteSignup finishes the not-yet-registered flow once the invitee has
// created an account through the invite link. It materializes the pending
// membership and the inbox notification that could not exist before the
// account did. The token is NOT consumed here - acceptance is a separate,
// deliberate step.
//
// Safe to call more than once; a duplicate call refreshes pending state
// without duplicating it.
func (s *InvitationService) CompleteSignup(
	ctx context.Context,
	rawToken string,
	userID string,
	email string,
	name string,
) (domain.Membership, error) {
	log := slogx.FromContext(ctx)

	// 1. The token must be live.
	inv, err := s.Tokens.Redeem(ctx, rawToken)
	if err != nil {
		return domain.Membership{}, err
	}

	// 2. The account's verified email must match the invitation.
	if domain.NormalizeEmail(email) != inv.Email {
		log.Warn("signup completion with mismatched email",
			slog.String("invitation_id", inv.ID),
		)
		return domain.Membership{}, ErrEmailMismatch
	}

	trip, err := s.Store.Trips().GetTripByID(ctx, inv.TripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Membership{}, ErrTripNotFound
		}
		return domain.Membership{}, err
	}

	// 3. Record the account locally and create pending state.
	var membership domain.Membership
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := ensureUser(ctx, tx, userID, inv.Email, name); err != nil {
			return err
		}

		m, err := tx.Memberships().UpsertPending(ctx, domain.Membership{
			TripID:    inv.TripID,
			UserID:    userID,
			Role:      inv.Role,
			InvitedBy: inv.InvitedBy,
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				// Already joined; a duplicate completion call is success.
				m, err = tx.Memberships().GetMembership(ctx, inv.TripID, userID)
				if err != nil {
					return err
				}
				membership = m
				return nil
			}
			return err
		}
		membership = m

		// Supersede any stale pending notification so duplicate calls do
		// not stack entries.
		if err := tx.Notifications().RevokePendingNotifications(ctx, userID, inv.TripID, domain.NotificationTripInvite); err != nil {
			return err
		}
		return tx.Notifications().CreateNotification(ctx, s.inviteNotification(ctx, inv, trip, userID, inv.InvitedBy))
	})
	if err != nil {
		return domain.Membership{}, err
	}

	log.Info("signup completed from invitation",
		slog.String("invitation_id", inv.ID),
		slog.String("trip_id", inv.TripID),
		slog.String("user_id", userID),
	)

	return membership, nil
}

// AcceptByToken accepts an invitation via its emailed link. The returned bool
// reports whether the user was already a joined member - a repeat accept is
// success, not an error.
func (s *InvitationService) AcceptByToken(
	ctx context.Context,
	rawToken string,
	userID string,
	email string,
) (domain.Membership, bool, error) {
	log := slogx.FromContext(ctx)

	// 1. Look up the token. An already-used token is tolerated here so that
	// the second of two racing accepts (or a double click) still succeeds,
	// provided the same invitee is asking.
	inv, err := s.Tokens.lookup(ctx, rawToken)
	if err != nil {
		return domain.Membership{}, false, err
	}

	// 2. The accepting account's email must match the invitation.
	if domain.NormalizeEmail(email) != inv.Email {
		if inv.Used() {
			// Don't leak membership state to a third party holding a
			// consumed link.
			return domain.Membership{}, false, ErrInviteAlreadyUsed
		}
		return domain.Membership{}, false, ErrEmailMismatch
	}

	// 3. Transition pending -> joined, consume the token, resolve the inbox.
	var (
		membership domain.Membership
		joinedNow  bool
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		transitioned, err := tx.Memberships().AcceptMembership(ctx, inv.TripID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		joinedNow = transitioned

		// Losing this conditional update to a concurrent accept is benign.
		if _, err := tx.Invitations().MarkInvitationUsed(ctx, inv.ID); err != nil {
			return err
		}

		if err := tx.Notifications().ResolveNotificationsBySubject(ctx, userID, inv.TripID, domain.NotificationTripInvite, domain.NotificationAccepted); err != nil {
			return err
		}

		membership, err = tx.Memberships().GetMembership(ctx, inv.TripID, userID)
		return err
	})
	if err != nil {
		return domain.Membership{}, false, err
	}

	log.Info("invitation accepted by token",
		slog.String("invitation_id", inv.ID),
		slog.String("trip_id", inv.TripID),
		slog.String("user_id", userID),
		slog.Bool("already_member", !joinedNow),
	)

	return membership, !joinedNow, nil
}

// AcceptByNotification accepts an invitation from the in-app inbox. The
// returned bool reports whether the user was already joined.
func (s *InvitationService) AcceptByNotification(
	ctx context.Context,
	notificationID string,
	userID string,
) (domain.Membership, bool, error) {
	log := slogx.FromContext(ctx)

	// 1. The notification must exist, belong to the caller, and be an invite.
	n, err := s.notificationForUser(ctx, notificationID, userID)
	if err != nil {
		return domain.Membership{}, false, err
	}

	// 2. Accept, consume the referenced token, resolve the inbox.
	var (
		membership domain.Membership
		joinedNow  bool
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		transitioned, err := tx.Memberships().AcceptMembership(ctx, n.TripID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		joinedNow = transitioned

		// Keep the emailed token in sync with the in-app accept so the two
		// channels converge on the same terminal state.
		if invID := n.Metadata["invitation_id"]; invID != "" {
			if _, err := tx.Invitations().MarkInvitationUsed(ctx, invID); err != nil {
				return err
			}
		}

		if err := tx.Notifications().ResolveNotificationsBySubject(ctx, userID, n.TripID, domain.NotificationTripInvite, domain.NotificationAccepted); err != nil {
			return err
		}

		membership, err = tx.Memberships().GetMembership(ctx, n.TripID, userID)
		return err
	})
	if err != nil {
		return domain.Membership{}, false, err
	}

	log.Info("invitation accepted by notification",
		slog.String("notification_id", n.ID),
		slog.String("trip_id", n.TripID),
		slog.String("user_id", userID),
		slog.Bool("already_member", !joinedNow),
	)

	return membership, !joinedNow, nil
}

// RejectByNotification declines an invitation from the inbox. A pending
// membership row is deleted and the outstanding token invalidated; a joined
// membership is left intact and only the notification is marked rejected
// (declining is not a way to leave a trip).
func (s *InvitationService) RejectByNotification(
	ctx context.Context,
	notificationID string,
	userID string,
) error {
	log := slogx.FromContext(ctx)

	n, err := s.notificationForUser(ctx, notificationID, userID)
	if err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.Memberships().GetMembership(ctx, n.TripID, userID)
		switch {
		case err == nil && m.Pending():
			// Reject must not leave a dangling pending row or live token.
			if err := tx.Memberships().DeleteMembership(ctx, n.TripID, userID); err != nil {
				return err
			}
			if err := tx.Invitations().DeleteUnusedInvitations(ctx, n.TripID, user.Email); err != nil {
				return err
			}
		case err == nil:
			// Already joined: membership stays.
		case errors.Is(err, store.ErrNotFound):
			// Nothing to unwind; still record the rejection below.
		default:
			return err
		}

		return tx.Notifications().ResolveNotificationsBySubject(ctx, userID, n.TripID, domain.NotificationTripInvite, domain.NotificationRejected)
	})
	if err != nil {
		return err
	}

	log.Info("invitation rejected",
		slog.String("notification_id", n.ID),
		slog.String("trip_id", n.TripID),
		slog.String("user_id", userID),
	)
	return nil
}

// RemoveMember removes a member from a trip. Only the owner may remove, the
// owner themselves can never be removed, and removing a still-pending member
// also revokes their unused token and pending notification so a stale link
// cannot be redeemed afterwards.
func (s *InvitationService) RemoveMember(
	ctx context.Context,
	tripID string,
	targetUserID string,
	requestedBy string,
) error {
	log := slogx.FromContext(ctx)

	trip, err := s.Store.Trips().GetTripByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTripNotFound
		}
		return err
	}

	if trip.OwnerID != requestedBy {
		return ErrForbidden
	}
	if targetUserID == trip.OwnerID {
		return ErrCannotRemoveOwner
	}

	m, err := s.Store.Memberships().GetMembership(ctx, tripID, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	wasPending := m.Pending()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Memberships().DeleteMembership(ctx, tripID, targetUserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		if !wasPending {
			// A joined member's tokens were consumed long ago; nothing else
			// to unwind.
			return nil
		}

		target, err := tx.Users().GetUserByID(ctx, targetUserID)
		if err != nil {
			return err
		}
		if err := tx.Invitations().DeleteUnusedInvitations(ctx, tripID, target.Email); err != nil {
			return err
		}
		return tx.Notifications().RevokePendingNotifications(ctx, targetUserID, tripID, domain.NotificationTripInvite)
	})
	if err != nil {
		return err
	}

	log.Info("member removed",
		slog.String("trip_id", tripID),
		slog.String("user_id", targetUserID),
		slog.Bool("was_pending", wasPending),
	)
	return nil
}

// VerifyToken reports what an invitation link points at without consuming
// anything. Backs the public pre-signup landing page.
func (s *InvitationService) VerifyToken(ctx context.Context, rawToken string) (domain.Invitation, domain.Trip, error) {
	inv, err := s.Tokens.Redeem(ctx, rawToken)
	if err != nil {
		return domain.Invitation{}, domain.Trip{}, err
	}

	trip, err := s.Store.Trips().GetTripByID(ctx, inv.TripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, domain.Trip{}, ErrTripNotFound
		}
		return domain.Invitation{}, domain.Trip{}, err
	}
	return inv, trip, nil
}

// notificationForUser loads a notification and enforces ownership and type.
func (s *InvitationService) notificationForUser(ctx context.Context, notificationID, userID string) (domain.Notification, error) {
	n, err := s.Store.Notifications().GetNotificationByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Notification{}, ErrNotificationNotFound
		}
		return domain.Notification{}, err
	}
	if n.UserID != userID {
		return domain.Notification{}, ErrForbidden
	}
	if n.Type != domain.NotificationTripInvite {
		return domain.Notification{}, ErrInvalidRequest
	}
	return n, nil
}

// inviteNotification builds the pending inbox entry referencing the token.
func (s *InvitationService) inviteNotification(ctx context.Context, inv domain.Invitation, trip domain.Trip, inviteeID, actorID string) domain.Notification {
	actorName := actorID
	if actor, err := s.Store.Users().GetUserByID(ctx, actorID); err == nil && actor.Name != "" {
		actorName = actor.Name
	}

	return domain.Notification{
		ID:      idx.New().String(),
		UserID:  inviteeID,
		Type:    domain.NotificationTripInvite,
		TripID:  trip.ID,
		ActorID: actorID,
		Message: fmt.Sprintf("%s invited you to join %q as %s", actorName, trip.Name, inv.Role),
		Status:  domain.NotificationPending,
		Metadata: map[string]string{
			"invitation_id": inv.ID,
			"role":          string(inv.Role),
		},
	}
}

// sendInviteMail asks the mailer to deliver the link. Failures are logged
// and swallowed: the invite stays valid and redeemable by the direct link.
func (s *InvitationService) sendInviteMail(ctx context.Context, raw string, inv domain.Invitation, trip domain.Trip) {
	log := slogx.FromContext(ctx)

	if s.Mailer == nil {
		return
	}

	link := s.LinkBaseURL + "/" + url.PathEscape(raw)
	err := s.Mailer.Send(ctx, mailx.Message{
		To:      inv.Email,
		Subject: fmt.Sprintf("You're invited to join %q", trip.Name),
		Link:    link,
		Metadata: map[string]string{
			"trip_name":  trip.Name,
			"role":       string(inv.Role),
			"expires_at": inv.ExpiresAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		log.Warn("invitation email delivery failed",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
	}
}

// ensureUser records an identity-provider account locally the first time we
// see it. Tolerates a concurrent insert of the same id.
func ensureUser(ctx context.Context, st store.Store, userID, email, name string) error {
	_, err := st.Users().GetUserByID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return st.Users().CreateUser(ctx, domain.User{
		ID:             userID,
		Email:          domain.NormalizeEmail(email),
		Name:           name,
		EmailConfirmed: true,
	})
}
