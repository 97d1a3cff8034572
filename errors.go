package cardfs

import "errors"

var (
	// ErrNotFound is returned when a path does not exist on the volume
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when the volume fails an open, write, remove or mkdir
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when an operation targets the mount root itself
	ErrForbidden = errors.New("forbidden")
)
