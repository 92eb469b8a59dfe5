// Package domain defines the core domain model for DiskEmb.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes follow the DE-<AREA>-<NNNN> format, with 4xxx for caller errors and
// 5xxx for internal failures.
type DomainError struct {
	Code    string // Error code (e.g., "DE-TBLE-4030")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Table Errors (TBLE)
// ============================================================================

var (
	// ErrInvalidArgument indicates a type or shape mismatch between the
	// supplied keys, values, and default values.
	ErrInvalidArgument = NewDomainError("DE-TBLE-4000", "invalid argument")

	// ErrPermissionDenied indicates a mutation was attempted on a read-only
	// table.
	ErrPermissionDenied = NewDomainError("DE-TBLE-4030", "permission denied in read-only mode")

	// ErrTableClosed indicates an operation on a table after Close.
	ErrTableClosed = NewDomainError("DE-TBLE-4090", "table is closed")
)

// ============================================================================
// Codec Errors (CDEC)
// ============================================================================

var (
	// ErrCorruptData indicates an encoded record does not match the table's
	// declared element count and width.
	ErrCorruptData = NewDomainError("DE-CDEC-5000", "encoded record does not match table shape")

	// ErrValueTooLarge indicates a key or value exceeds the snapshot format's
	// length-field range.
	ErrValueTooLarge = NewDomainError("DE-CDEC-4130", "encoded key or value exceeds format limits")
)

// ============================================================================
// Snapshot Errors (SNAP)
// ============================================================================

var (
	// ErrSnapshotNotFound indicates the snapshot source file is missing.
	ErrSnapshotNotFound = NewDomainError("DE-SNAP-4040", "snapshot file not found")

	// ErrUnsupportedFormat indicates a snapshot header with bad magic or an
	// unknown format version.
	ErrUnsupportedFormat = NewDomainError("DE-SNAP-4150", "unsupported snapshot format")

	// ErrUnexpectedEOF indicates a snapshot file truncated mid-record.
	ErrUnexpectedEOF = NewDomainError("DE-SNAP-4160", "unexpected end of snapshot file")

	// ErrSnapshotIO indicates the snapshot destination or source could not be
	// read or written.
	ErrSnapshotIO = NewDomainError("DE-SNAP-5010", "snapshot i/o failure")
)

// ============================================================================
// Store Errors (STOR)
// ============================================================================

var (
	// ErrStore wraps any underlying store failure that is not classified as
	// "key not found".
	ErrStore = NewDomainError("DE-STOR-5000", "storage engine failure")
)
