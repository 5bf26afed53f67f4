package http

import (
	"encoding/json"
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// InviteCreateHandler invites an email address to a trip. The response never
// contains the raw token; it travels only inside the invitation email.
//
// POST /v1/trips/{tripID}/members/invite
type InviteCreateHandler struct {
	InvitationService *service.InvitationService
}

func (h *InviteCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := r.PathValue("tripID")

	var req tripsdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		writeBadRequest(w, "email is required")
		return
	}
	if req.Role == "" {
		writeBadRequest(w, "role is required")
		return
	}

	inviterID := httpx.UserIDFromCtx(ctx)

	inv, err := h.InvitationService.InviteByEmail(ctx, tripID, req.Email, domain.Role(req.Role), inviterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tripsdk.InviteResponse{
		InvitationID: inv.ID,
		TripID:       inv.TripID,
		Email:        inv.Email,
		Role:         string(inv.Role),
		ExpiresAt:    inv.ExpiresAt,
	})
}
