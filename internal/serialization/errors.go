package serialization

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
	ErrDTypeMismatch    = errors.New("dtype does not match the requested scalar type")
	ErrInvalidHeader    = errors.New("invalid header")
	ErrTruncated        = errors.New("data section truncated")
)

// ValidationError provides detailed information about validation failures.
// It matches ErrInvalidHeader under errors.Is.
type ValidationError struct {
	Type    string // Type of error (e.g., "overlap", "invalid_shape")
	Tensor  string // Primary array name involved
	Tensor2 string // Secondary array name (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: arrays %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: array %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap returns ErrInvalidHeader.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidHeader
}
