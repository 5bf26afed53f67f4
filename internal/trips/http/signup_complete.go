package http

import (
	"encoding/json"
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/jwtx"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// SignupCompleteHandler finishes the invited-signup flow: the caller has just
// registered with the identity provider and presents their invitation token.
// The pending membership and inbox entry are created here; accepting remains
// a separate step. The bearer token must carry a confirmed email, since the
// invite is matched against that address.
//
// POST /v1/signup/complete
type SignupCompleteHandler struct {
	InvitationService *service.InvitationService
}

func (h *SignupCompleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tripsdk.CompleteSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)
	if !ok || !claims.EmailConfirmed {
		// Redeeming a link against an unverified address would let anyone
		// who registers it claim the invite.
		httpx.WriteJSON(w, http.StatusForbidden, tripsdk.ErrorResponse{
			Error:            tripsdk.ErrorCodeForbidden,
			ErrorDescription: "a verified email address is required to complete signup",
		})
		return
	}

	userID := httpx.UserIDFromCtx(ctx)
	email := httpx.EmailFromCtx(ctx)
	name := claims.Name

	m, err := h.InvitationService.CompleteSignup(ctx, req.Token, userID, email, name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toMembershipResponse(m, false))
}
