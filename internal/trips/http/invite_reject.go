package http

import (
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
)

// InviteRejectHandler declines an invitation from the inbox. A pending
// membership is unwound; a joined one is left alone.
//
// POST /v1/invitations/{notificationID}/reject
type InviteRejectHandler struct {
	InvitationService *service.InvitationService
}

func (h *InviteRejectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID := r.PathValue("notificationID")
	userID := httpx.UserIDFromCtx(ctx)

	if err := h.InvitationService.RejectByNotification(ctx, notificationID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
