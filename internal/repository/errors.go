package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")

	// ErrConflict is returned when an update loses a status guard, e.g. an
	// accept against a request that is no longer OPEN.
	ErrConflict = errors.New("conflict")
)
