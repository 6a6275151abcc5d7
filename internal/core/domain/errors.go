package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("already exists")

	// ErrValidation marks caller mistakes in otherwise well-formed requests.
	ErrValidation = errors.New("validation failed")
)
