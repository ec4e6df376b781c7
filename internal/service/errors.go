package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Handlers translate them to HTTP statuses
// with errors.Is; everything else is an internal failure.
var (
	// ErrValidation marks malformed or out-of-range input, detected before
	// any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to an absent entity.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition marks a lifecycle operation attempted from the
	// wrong state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInsufficientBalance marks a withdrawal or closure that would
	// violate the balance invariant.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrForbidden marks a role-gated operation attempted by an
	// unprivileged actor.
	ErrForbidden = errors.New("access denied")
	// ErrConflict marks a lost race against a concurrent writer; the
	// operation was rolled back and may be retried.
	ErrConflict = errors.New("concurrent update conflict")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func transitionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}
