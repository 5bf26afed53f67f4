package http

import (
	"errors"
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/slogx"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// writeServiceError maps service sentinels onto HTTP error responses. The
// invite-token failures (expired, used, wrong address) all map to 400 and are
// told apart by code, so the UI can say exactly why a link no longer works.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		code   string
		desc   string
	)

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status, code, desc = http.StatusBadRequest, tripsdk.ErrorCodeInvalidRequest, "the request is malformed or missing required parameters"
	case errors.Is(err, service.ErrForbidden):
		status, code, desc = http.StatusForbidden, tripsdk.ErrorCodeForbidden, "you do not have permission to perform this action"
	case errors.Is(err, service.ErrTripNotFound):
		status, code, desc = http.StatusNotFound, tripsdk.ErrorCodeNotFound, "trip not found"
	case errors.Is(err, service.ErrMemberNotFound):
		status, code, desc = http.StatusNotFound, tripsdk.ErrorCodeNotFound, "member not found"
	case errors.Is(err, service.ErrNotificationNotFound):
		status, code, desc = http.StatusNotFound, tripsdk.ErrorCodeNotFound, "notification not found"
	case errors.Is(err, service.ErrAlreadyMember):
		status, code, desc = http.StatusConflict, tripsdk.ErrorCodeAlreadyMember, "this user is already a member of the trip"
	case errors.Is(err, service.ErrCannotRemoveOwner):
		status, code, desc = http.StatusConflict, tripsdk.ErrorCodeCannotRemoveOwner, "the trip owner cannot be removed"
	case errors.Is(err, service.ErrInviteNotFound):
		status, code, desc = http.StatusNotFound, tripsdk.ErrorCodeNotFound, "this invitation link is not valid"
	case errors.Is(err, service.ErrInviteExpired):
		status, code, desc = http.StatusBadRequest, tripsdk.ErrorCodeInviteExpired, "this invitation has expired; ask for a new one"
	case errors.Is(err, service.ErrInviteAlreadyUsed):
		status, code, desc = http.StatusBadRequest, tripsdk.ErrorCodeInviteUsed, "this invitation has already been used"
	case errors.Is(err, service.ErrEmailMismatch):
		status, code, desc = http.StatusBadRequest, tripsdk.ErrorCodeEmailMismatch, "this invitation was issued for a different email address"
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		status, code, desc = http.StatusInternalServerError, tripsdk.ErrorCodeServerError, "internal server error"
	}

	httpx.WriteJSON(w, status, tripsdk.ErrorResponse{
		Error:            code,
		ErrorDescription: desc,
	})
}

// writeBadRequest is the shorthand for request decoding/validation failures.
func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusBadRequest, tripsdk.ErrorResponse{
		Error:            tripsdk.ErrorCodeInvalidRequest,
		ErrorDescription: desc,
	})
}
