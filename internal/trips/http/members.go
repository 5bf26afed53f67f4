package http

import (
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
)

// MemberRemoveHandler removes a member from a trip. Owner only; removing a
// still-pending member also revokes their invitation token and notification.
//
// DELETE /v1/trips/{tripID}/members/{userID}
type MemberRemoveHandler struct {
	InvitationService *service.InvitationService
}

func (h *MemberRemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := r.PathValue("tripID")
	targetID := r.PathValue("userID")
	requestedBy := httpx.UserIDFromCtx(ctx)

	if err := h.InvitationService.RemoveMember(ctx, tripID, targetID, requestedBy); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
