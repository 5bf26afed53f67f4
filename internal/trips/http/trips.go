package http

import (
	"encoding/json"
	"net/http"

	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/httpx"
	"github.com/wayfarerhq/wayfarer/pkg/jwtx"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// TripsHandler serves trip creation and member listing.
type TripsHandler struct {
	TripService *service.TripService
}

// HandleCreate creates a trip owned by the authenticated caller.
//
// POST /v1/trips
func (h *TripsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tripsdk.CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	userID := httpx.UserIDFromCtx(ctx)
	email := httpx.EmailFromCtx(ctx)
	name := ""
	if claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims); ok {
		name = claims.Name
	}

	trip, err := h.TripService.CreateTrip(ctx, userID, email, name, req.Name, domain.Privacy(req.Privacy))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTripResponse(trip))
}

// HandleListMembers returns a trip's member list, owner first. Joined
// members only.
//
// GET /v1/trips/{tripID}/members
func (h *TripsHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := r.PathValue("tripID")
	userID := httpx.UserIDFromCtx(ctx)

	members, err := h.TripService.ListMembers(ctx, tripID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := tripsdk.MembersResponse{
		TripID:  tripID,
		Members: make([]tripsdk.MemberResponse, 0, len(members)),
	}
	for _, m := range members {
		out.Members = append(out.Members, toMemberResponse(m))
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}
