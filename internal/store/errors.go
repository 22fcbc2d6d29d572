package store

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrSchemaInit is returned when the vector table cannot be created or validated.
	ErrSchemaInit = errors.New("schema initialization failed")

	// ErrValidation is returned for malformed input; the database is not touched.
	ErrValidation = errors.New("validation failed")

	// ErrInsertFailed is returned when the database rejects a write.
	ErrInsertFailed = errors.New("insert failed")

	// ErrReadFailed is returned when pagination or search fails in the database.
	ErrReadFailed = errors.New("read failed")

	// ErrNotReady is returned when the schema is not initialized or the store is closed.
	ErrNotReady = errors.New("store is not ready")
)

// Error wraps a failure with the operation and its kind.
type Error struct {
	Op   string // Operation name
	Kind error  // One of the Err* kinds above
	Err  error  // Underlying error, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying error to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}
