package repository

import "errors"

// Errors shared by all repository implementations.
var (
	// ErrNotFound is returned when a row does not exist or is soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on unique-constraint violations (e.g. email).
	ErrDuplicate = errors.New("duplicate")
)
