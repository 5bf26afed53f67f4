package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/internal/trips/store"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/jwtx"
	"github.com/wayfarerhq/wayfarer/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	TripService         *service.TripService
	InvitationService   *service.InvitationService
	NotificationService *service.NotificationService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTrips()
	r.registerInvitations()
	r.registerNotifications()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerTrips() {
	trips := &TripsHandler{TripService: r.TripService}

	// POST /v1/trips - authenticated write, moderate limit
	r.Mux.Handle("POST /v1/trips",
		httpx.Chain(http.HandlerFunc(trips.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /v1/trips/{tripID}/members - authenticated read
	r.Mux.Handle("GET /v1/trips/{tripID}/members",
		httpx.Chain(http.HandlerFunc(trips.HandleListMembers),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /v1/trips/{tripID}/members/invite - sends email, moderate limit
	invite := &InviteCreateHandler{InvitationService: r.InvitationService}
	r.Mux.Handle("POST /v1/trips/{tripID}/members/invite",
		httpx.Chain(invite,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// DELETE /v1/trips/{tripID}/members/{userID} - owner operation
	remove := &MemberRemoveHandler{InvitationService: r.InvitationService}
	r.Mux.Handle("DELETE /v1/trips/{tripID}/members/{userID}",
		httpx.Chain(remove,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	acceptToken := &AcceptTokenHandler{InvitationService: r.InvitationService}
	accept := &InviteAcceptHandler{InvitationService: r.InvitationService}
	reject := &InviteRejectHandler{InvitationService: r.InvitationService}
	verify := &InviteVerifyHandler{InvitationService: r.InvitationService}
	signup := &SignupCompleteHandler{InvitationService: r.InvitationService}

	// Token-bearing endpoints get strict limits to slow token guessing.
	r.Mux.Handle("POST /v1/invitations/accept-token",
		httpx.Chain(acceptToken,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/invitations/{notificationID}/accept",
		httpx.Chain(accept,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/invitations/{notificationID}/reject",
		httpx.Chain(reject,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Public: the invitee has no account yet.
	r.Mux.Handle("GET /v1/invitations/verify/{token}",
		httpx.Chain(verify,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/signup/complete",
		httpx.Chain(signup,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerNotifications() {
	h := &NotificationsHandler{NotificationService: r.NotificationService}

	r.Mux.Handle("GET /v1/notifications",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/notifications/{notificationID}/read",
		httpx.Chain(http.HandlerFunc(h.HandleMarkRead),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
