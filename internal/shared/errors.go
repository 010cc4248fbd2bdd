package shared

import "errors"

var (
	// ErrNotFound indicates a document, family, or counterparty does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a concurrent modification was detected.
	ErrConflict = errors.New("conflict")
	// ErrPersistence indicates the underlying storage read/write failed.
	ErrPersistence = errors.New("persistence failure")
)
