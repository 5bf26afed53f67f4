package http

import (
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
)

// InviteAcceptHandler accepts an invitation from the in-app inbox. The
// emailed token is consumed in the same transaction so both channels converge.
//
// POST /v1/invitations/{notificationID}/accept
type InviteAcceptHandler struct {
	InvitationService *service.InvitationService
}

func (h *InviteAcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID := r.PathValue("notificationID")
	userID := httpx.UserIDFromCtx(ctx)

	m, alreadyMember, err := h.InvitationService.AcceptByNotification(ctx, notificationID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMembershipResponse(m, alreadyMember))
}
