package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request rejected for bad input or a violated
	// business rule. The API layer maps it to a 400.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks a request from an actor without the required
	// membership or role. The API layer maps it to a 403.
	ErrForbidden = errors.New("forbidden")
)

// validationf wraps ErrValidation with a reason so callers can both match
// with errors.Is and surface the message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// forbiddenf wraps ErrForbidden with a reason.
func forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
