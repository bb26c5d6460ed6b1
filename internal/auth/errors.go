package auth

import "errors"

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired is kept distinct from ErrInvalidToken for diagnostics;
	// the HTTP gate collapses both into one 401 class.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike, so login failures are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)
