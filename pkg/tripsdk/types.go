package tripsdk

import "time"

// ErrorResponse is the standard error body: a machine-readable code plus a
// human-readable description.
type ErrorResponse struct {
	// Error is the error code (e.g., "invalid_request", "invite_expired")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Trip Types
// ============================================================================

// CreateTripRequest creates a new trip owned by the caller.
type CreateTripRequest struct {
	// Name is the display name of the trip
	Name string `json:"name"`

	// Privacy is one of "private", "friends-only", "public". Defaults to
	// "private" when omitted.
	Privacy string `json:"privacy,omitempty"`
}

// TripResponse describes a trip.
type TripResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Privacy   string    `json:"privacy"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberResponse is one entry in a trip's member list. Status is "pending"
// until the member accepts, then "joined".
type MemberResponse struct {
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	InvitedBy string     `json:"invited_by"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
}

// MembersResponse is the full member list of a trip, owner first.
type MembersResponse struct {
	TripID  string           `json:"trip_id"`
	Members []MemberResponse `json:"members"`
}

// ============================================================================
// Invitation Types
// ============================================================================

// InviteRequest invites an email address to a trip.
type InviteRequest struct {
	// Email is the invitee's address; matching against accounts is
	// case-insensitive.
	Email string `json:"email"`

	// Role is the granted role: "editor" or "viewer".
	Role string `json:"role"`
}

// InviteResponse confirms an invitation was created. The raw token is never
// returned through the API; it travels only inside the invitation email.
type InviteResponse struct {
	InvitationID string    `json:"invitation_id"`
	TripID       string    `json:"trip_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AcceptTokenRequest accepts an invitation using the emailed token.
type AcceptTokenRequest struct {
	Token string `json:"token"`
}

// CompleteSignupRequest links a freshly registered account to its invitation.
type CompleteSignupRequest struct {
	Token string `json:"token"`
}

// MembershipResponse describes the caller's membership after an invitation
// operation. AlreadyMember is true when the call was an idempotent repeat.
type MembershipResponse struct {
	TripID        string     `json:"trip_id"`
	UserID        string     `json:"user_id"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	JoinedAt      *time.Time `json:"joined_at,omitempty"`
	AlreadyMember bool       `json:"already_member,omitempty"`
}

// VerifyResponse describes what an invitation link points at, shown on the
// pre-signup landing page. It deliberately contains no member list.
type VerifyResponse struct {
	TripID    string    `json:"trip_id"`
	TripName  string    `json:"trip_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ============================================================================
// Notification Types
// ============================================================================

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	TripID    string            `json:"trip_id"`
	ActorID   string            `json:"actor_id"`
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Read      bool              `json:"read"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NotificationsResponse is a user's inbox, newest first.
type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthChecks reports per-dependency status on the readiness endpoint.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned by the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
