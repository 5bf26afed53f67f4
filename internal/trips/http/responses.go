package http

import (
	"github.com/wayfarerhq/wayfarer/internal/trips/domain"
	"github.com/wayfarerhq/wayfarer/internal/trips/service"
	"github.com/wayfarerhq/wayfarer/pkg/tripsdk"
)

// Converters from domain types to wire types. The wire layer collapses the
// nullable joined_at into an explicit status string for UI consumption.

func membershipStatus(m domain.Membership) string {
	if m.Joined() {
		return "joined"
	}
	return "pending"
}

func toTripResponse(t domain.Trip) tripsdk.TripResponse {
	return tripsdk.TripResponse{
		ID:        t.ID,
		Name:      t.Name,
		OwnerID:   t.OwnerID,
		Privacy:   string(t.Privacy),
		CreatedAt: t.CreatedAt,
	}
}

func toMemberResponse(tm service.TripMember) tripsdk.MemberResponse {
	return tripsdk.MemberResponse{
		UserID:    tm.Membership.UserID,
		Name:      tm.User.Name,
		Email:     tm.User.Email,
		Role:      string(tm.Membership.Role),
		Status:    membershipStatus(tm.Membership),
		InvitedBy: tm.Membership.InvitedBy,
		JoinedAt:  tm.Membership.JoinedAt,
	}
}

func toMembershipResponse(m domain.Membership, alreadyMember bool) tripsdk.MembershipResponse {
	return tripsdk.MembershipResponse{
		TripID:        m.TripID,
		UserID:        m.UserID,
		Role:          string(m.Role),
		Status:        membershipStatus(m),
		JoinedAt:      m.JoinedAt,
		AlreadyMember: alreadyMember,
	}
}

func toNotificationResponse(n domain.Notification) tripsdk.NotificationResponse {
	return tripsdk.NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		TripID:    n.TripID,
		ActorID:   n.ActorID,
		Message:   n.Message,
		Status:    string(n.Status),
		Read:      n.Read,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}
}
