package services

import (
	"errors"
	"fmt"
)

// Business errors surfaced to callers. Handlers map these to HTTP statuses;
// the messages distinguish "you may not do that" from "that already happened"
// from "that's not possible right now".
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("not allowed for this actor")
	ErrStaleState        = errors.New("order changed underneath you, refresh and retry")
	ErrAlreadyProcessed  = errors.New("payment already processed")
	ErrValidation        = errors.New("validation failed")

	// ErrDownstreamUnavailable marks side-effect failures. It is logged and
	// absorbed, never returned from a transition.
	ErrDownstreamUnavailable = errors.New("downstream unavailable")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
