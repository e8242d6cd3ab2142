package expense

import "errors"

var (
	// ErrForbidden is returned when the actor lacks the role or ownership
	// entitlement for the requested mutation
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when the requested transition is not legal
	// from the expense's current status
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrNotFound is returned when the expense does not exist or is not
	// visible to the actor; the two cases are deliberately indistinguishable
	ErrNotFound = errors.New("expense not found")

	// ErrValidationFailed is returned when input fails validation before any
	// mutation is attempted
	ErrValidationFailed = errors.New("validation failed")
)
