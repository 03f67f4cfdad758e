package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every operation failure maps to exactly one of the three
// kinds; HTTP boundaries translate them to 400, 404 and 500 respectively.
var (
	// ErrValidation marks missing or malformed required fields.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing user, or a missing (user, log) pair.
	// The two cases are deliberately not distinguished.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks record store connectivity or write failures.
	ErrStorage = errors.New("storage error")
)

// Validation errors for specific fields, all wrapping ErrValidation.
var (
	ErrMissingExternalID = fmt.Errorf("%w: external id is required", ErrValidation)
	ErrMissingEmail      = fmt.Errorf("%w: email is required", ErrValidation)
	ErrMissingAmount     = fmt.Errorf("%w: amount is required", ErrValidation)
	ErrMissingCategory   = fmt.Errorf("%w: category is required", ErrValidation)
	ErrMissingLogID      = fmt.Errorf("%w: log id is required", ErrValidation)
)

// StorageError wraps a store-level failure with ErrStorage so callers can
// classify it without knowing the driver.
func StorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
