package http

import (
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// InviteVerifyHandler resolves what an invitation link points at without
// consuming it. Public: the invitee has no account yet in the signup flow.
// Strictly rate limited since the token rides in the path.
//
// GET /v1/invitations/verify/{token}
type InviteVerifyHandler struct {
	InvitationService *service.InvitationService
}

func (h *InviteVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.PathValue("token")

	inv, trip, err := h.InvitationService.VerifyToken(ctx, token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tripsdk.VerifyResponse{
		TripID:    trip.ID,
		TripName:  trip.Name,
		Email:     inv.Email,
		Role:      string(inv.Role),
		ExpiresAt: inv.ExpiresAt,
	})
}
