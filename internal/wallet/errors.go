package wallet

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotImplemented guards the instant deposit/withdraw paths. Only the
	// manual, admin-reviewed flow is supported.
	ErrNotImplemented = errors.New("not implemented")
)

// ValidationError names the violated limit so the caller can surface a
// user-correctable message.
type ValidationError struct {
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Constraint, e.Message)
}

func newValidationError(constraint, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Constraint: constraint, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a limit/threshold violation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
