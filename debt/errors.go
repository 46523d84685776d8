/*
errors.go - Error types for debt operations

ERROR CATEGORIES:
  1. Validation errors - malformed input, rejected before any work is done
  2. Lookup errors     - missing or foreign-owned debts
  3. Store errors      - wrapped by the store implementations with %w

The statement auto-updater does NOT use errors for its "not updated"
outcomes; see statement.go for the tagged result type.
*/
package debt

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDebtNotFound is returned when a referenced debt doesn't exist.
	ErrDebtNotFound = errors.New("debt not found")

	// ErrNotAuthorized is returned when a debt belongs to another owner.
	ErrNotAuthorized = errors.New("not authorized")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Invalid builds a ValidationError for callers outside this package.
func Invalid(field, format string, args ...any) error {
	return invalid(field, format, args...)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing debt.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDebtNotFound)
}
