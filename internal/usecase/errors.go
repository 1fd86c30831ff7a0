package usecase

import "errors"

// Service errors. Handlers map them onto HTTP statuses, and domain errors
// that need a more specific reason are wrapped alongside them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrConflict covers writes that lost against the current ledger state.
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
