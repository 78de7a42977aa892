package security

import "errors"

// Sentinel kinds for authentication errors.
var (
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrInvalidToken     = errors.New("invalid or expired token")
)
