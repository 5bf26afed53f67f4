package http

import (
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// NotificationsHandler serves the inbox: listing and marking entries read.
type NotificationsHandler struct {
	NotificationService *service.NotificationService
}

// HandleList returns the caller's inbox, newest first. ?unread=true filters
// to unread entries.
//
// GET /v1/notifications
func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromCtx(ctx)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	list, err := h.NotificationService.List(ctx, userID, unreadOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := tripsdk.NotificationsResponse{
		Notifications: make([]tripsdk.NotificationResponse, 0, len(list)),
	}
	for _, n := range list {
		out.Notifications = append(out.Notifications, toNotificationResponse(n))
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleMarkRead flips read=true on one of the caller's notifications.
//
// POST /v1/notifications/{notificationID}/read
func (h *NotificationsHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID := r.PathValue("notificationID")
	userID := httpx.UserIDFromCtx(ctx)

	if err := h.NotificationService.MarkRead(ctx, notificationID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
