package application

import "errors"

// Service-level sentinel errors, mapped to HTTP status codes at the handler
// boundary.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrLockedOut          = errors.New("too many failed login attempts")
	ErrWeakPassword       = errors.New("password does not meet policy")
)
