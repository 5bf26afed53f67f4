package http

import (
	"encoding/json"
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// AcceptTokenHandler accepts an invitation via its emailed token. Repeat
// accepts by the same account are idempotent successes.
//
// POST /v1/invitations/accept-token
type AcceptTokenHandler struct {
	InvitationService *service.InvitationService
}

func (h *AcceptTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tripsdk.AcceptTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	userID := httpx.UserIDFromCtx(ctx)
	email := httpx.EmailFromCtx(ctx)

	m, alreadyMember, err := h.InvitationService.AcceptByToken(ctx, req.Token, userID, email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMembershipResponse(m, alreadyMember))
}
