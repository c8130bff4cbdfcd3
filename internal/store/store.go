// Package store implements the per-entity SQLite repositories. Stores
// return (nil, nil) when a row does not exist; services translate that to
// their own not-found errors.
package store

import (
	"errors"
	"fmt"

	"github.com/larderhq/larder/internal/apperror"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// conflictErr maps SQLite uniqueness violations to apperror.ErrConflict so
// callers can react without depending on driver error codes.
func conflictErr(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", op, apperror.ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
