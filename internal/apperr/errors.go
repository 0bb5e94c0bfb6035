// Package apperr defines sentinel errors shared across Dropnote packages.
package apperr

import "errors"

var (
	// ErrMigration wraps any failure while copying data to a new directory.
	ErrMigration = errors.New("data migration failed")
	// ErrUnavailable is returned for panel operations when no panel is attached.
	ErrUnavailable = errors.New("not available")
	// ErrInvalidID marks a note identifier that cannot name a file.
	ErrInvalidID = errors.New("invalid note id")
)
