package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-freelance/validation"
)

var (
	// ErrNotFound covers both a missing row and an ownership mismatch;
	// the two are deliberately indistinguishable to the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference means a client_id/project_id does not exist or
	// is not owned by the caller.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrConflict rejects deleting a row that other rows still reference.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries per-field violations to the HTTP boundary.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation failed" }

// validated wraps a non-empty violation map, or returns nil.
func validated(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// DocumentWriteError signals that the invoice row was written but its
// document could not be produced. The record is kept without a pdf_url;
// there is no rollback.
type DocumentWriteError struct {
	InvoiceID uint
	Err       error
}

func (e *DocumentWriteError) Error() string {
	return fmt.Sprintf("document write failed for invoice %d: %v", e.InvoiceID, e.Err)
}

func (e *DocumentWriteError) Unwrap() error { return e.Err }
