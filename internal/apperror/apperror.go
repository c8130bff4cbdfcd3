// Package apperror defines the error kinds shared across the larder
// services and their HTTP mapping.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput marks input rejected before any store access:
	// empty names, non-positive quantities, and the like.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an operation targeting an id that does not exist
	// for the given user. Other users' rows report the same way.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness-constraint violation on insert.
	// Internal only: the pantry resolver absorbs it by re-fetching the row
	// the concurrent writer created, so it never reaches an HTTP response.
	ErrConflict = errors.New("conflict")
)

// Invalid returns an ErrInvalidInput with a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// SyncError reports that the fridge-side half of a checked-toggle failed
// after the checked flag was already persisted. The grocery state change
// stands; the fridge may be stale until the toggle is retried.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("fridge sync (%s): %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
