package internal

import "errors"

// Error kinds returned by room operations. Callers match with errors.Is;
// the transport maps them to status codes and error events.
var (
	ErrValidation          = errors.New("invalid request")
	ErrCapacity            = errors.New("room is full")
	ErrDuplicateMembership = errors.New("player already in a room")
	ErrNotFound            = errors.New("not found")
	ErrAuthorization       = errors.New("not allowed")
	ErrStateConflict       = errors.New("invalid for current game state")
	ErrRateLimited         = errors.New("too many commands, slow down")

	// ErrInvariantViolation is fatal to the room that raises it: the room is
	// forcibly finished, other rooms are unaffected.
	ErrInvariantViolation = errors.New("invariant violation")
)
