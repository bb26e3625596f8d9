package domain

import "errors"

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint rejected a write.
	ErrConflict = errors.New("unique constraint conflict")

	// ErrInvalidTransition indicates a queue status change out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation indicates a record failed the staging gate.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidConfig indicates a run or process configuration outside its allowed range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownCategory indicates a category name outside project|funding|resource.
	ErrUnknownCategory = errors.New("unknown category")
)
