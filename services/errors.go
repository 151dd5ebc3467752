package services

import "errors"

// Shared errors used across services and the HTTP error mapping. All of
// these are caller-recoverable conditions, never process-fatal.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed         = errors.New("validation failed")
	ErrPasswordTooShort         = errors.New("password is too short")
	ErrLeagueNameRequired       = errors.New("league name is required")
	ErrEventNameRequired        = errors.New("event name is required")
	ErrPostTitleRequired        = errors.New("post title is required")
	ErrStageInvalidDateRange    = errors.New("stage end date must not be before start date")
	ErrMatchSameParticipant     = errors.New("a match requires two distinct participants")
	ErrMatchParticipantMismatch = errors.New("participants must be enrolled in the stage's event")
	ErrInvalidResult            = errors.New("game counts must be non-negative integers")

	// Derived-statistics failures
	ErrEventNoStages    = errors.New("event has no stages, date range is undefined")
	ErrNoMatchesPlayed  = errors.New("participant has no recorded matches")

	// Enrollment conflicts
	ErrMembershipConflict  = errors.New("user is already a member of this league")
	ErrParticipantConflict = errors.New("user is already enrolled in this event")

	// Authentication and authorization
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrNotLeagueMember    = errors.New("user is not a member of this league")

	// Conflicts
	ErrUserEmailConflict  = errors.New("email address is already in use")
	ErrUserNameConflict   = errors.New("user name is already in use")
	ErrLeagueNameConflict = errors.New("league name is already in use")

	// Entity-specific not-found errors
	ErrUserNotFound        = errors.New("user not found")
	ErrLeagueNotFound      = errors.New("league not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrStageNotFound       = errors.New("stage not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrMembershipNotFound  = errors.New("membership not found for user in this league")
)
