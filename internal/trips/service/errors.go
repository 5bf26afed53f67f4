package service

import "errors"

// Sentinel errors shared by the services. The HTTP layer maps these onto
// status codes; user-visible messaging must distinguish expired vs used vs
// wrong-email so each gets its own sentinel.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("forbidden")

	ErrTripNotFound         = errors.New("trip not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrAlreadyMember     = errors.New("already a member of this trip")
	ErrCannotRemoveOwner = errors.New("trip owner cannot be removed")

	ErrInviteNotFound    = errors.New("invitation not found")
	ErrInviteExpired     = errors.New("invitation has expired")
	ErrInviteAlreadyUsed = errors.New("invitation has already been used")
	ErrEmailMismatch     = errors.New("invitation was issued for a different email")
)
