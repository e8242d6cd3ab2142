package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when no active account matches the email/password pair
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateIdentity is returned when registering an email that already exists
	ErrDuplicateIdentity = errors.New("email already registered")

	// ErrInvalidSession is returned when a session token is missing, malformed, expired or revoked
	ErrInvalidSession = errors.New("invalid session")

	// ErrValidationFailed is returned when registration input is incomplete or malformed
	ErrValidationFailed = errors.New("validation failed")
)
