package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
	"github.com/wayfarerhq/wayfarer/internal/trips/store/drivers/sqlite"
	"github.com/wayfarerhq/wayfarer/pkg/idx"
	"github.com/wayfarerhq/wayfarer/pkg/mailx"
)

const testLinkBase = "https://app.test/invitations"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// recordingMailer captures outbound messages for assertions.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailx.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailx.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) mailx.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

// tokenFromLink recovers the raw invitation token from a captured mail link.
func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(link, testLinkBase+"/"))
	raw, err := url.PathUnescape(strings.TrimPrefix(link, testLinkBase+"/"))
	require.NoError(t, err)
	return raw
}

type testEnv struct {
	store         store.Store
	trips         *TripService
	invites       *InvitationService
	notifications *NotificationService
	mailer        *recordingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := newTestStore(t)
	mailer := &recordingMailer{}
	return &testEnv{
		store: st,
		trips: &TripService{Store: st},
		invites: &InvitationService{
			Store:       st,
			Tokens:      &TokenService{Store: st},
			Mailer:      mailer,
			LinkBaseURL: testLinkBase,
		},
		notifications: &NotificationService{Store: st},
		mailer:        mailer,
	}
}

func (e *testEnv) createUser(t *testing.T, email, name string) domain.User {
	t.Helper()

	u := domain.User{
		ID:             idx.New().String(),
		Email:          domain.NormalizeEmail(email),
		Name:           name,
		EmailConfirmed: true,
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) createTrip(t *testing.T, owner domain.User, name string) domain.Trip {
	t.Helper()

	trip, err := e.trips.CreateTrip(context.Background(), owner.ID, owner.Email, owner.Name, name, domain.PrivacyPrivate)
	require.NoError(t, err)
	return trip
}

func (e *testEnv) membership(t *testing.T, tripID, userID string) domain.Membership {
	t.Helper()

	m, err := e.store.Memberships().GetMembership(context.Background(), tripID, userID)
	require.NoError(t, err)
	return m
}

func (e *testEnv) inbox(t *testing.T, userID string) []domain.Notification {
	t.Helper()

	list, err := e.store.Notifications().ListUserNotifications(context.Background(), userID, false)
	require.NoError(t, err)
	return list
}

// pendingInvite filters an inbox down to pending trip invites for a trip.
func pendingInvites(list []domain.Notification, tripID string) []domain.Notification {
	var out []domain.Notification
	for _, n := range list {
		if n.TripID == tripID && n.Type == domain.NotificationTripInvite && n.Status == domain.NotificationPending {
			out = append(out, n)
		}
	}
	return out
}

// seedInvitation writes an invitation row directly, bypassing the token
// service, for expiry edge cases.
func (e *testEnv) seedInvitation(t *testing.T, inv domain.Invitation) domain.Invitation {
	t.Helper()

	if inv.ID == "" {
		inv.ID = idx.New().String()
	}
	require.NoError(t, e.store.Invitations().CreateInvitation(context.Background(), inv))
	return inv
}

func timePtr(tm time.Time) *time.Time { return &tm }
