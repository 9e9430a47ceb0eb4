package auth

import "errors"

var (
	// ErrUnauthenticated covers every failure to resolve a principal: a
	// missing/malformed header, an invalid or expired token, an unknown or
	// inactive user, or an expired/inactive API key.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when a resolved principal lacks a required
	// scope or admin privilege.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidToken is the specific reason a bearer token failed
	// verification: tampered signature, expired, or wrong algorithm.
	ErrInvalidToken = errors.New("invalid token")
)
