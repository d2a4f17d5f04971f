package repository

import "errors"

var (
	// ErrNotFound is returned when a row with the requested id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert violates the unique email constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)
