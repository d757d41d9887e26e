package diff

import (
	"errors"
	"fmt"
)

// Boundary validation failures reported by BuildIndex and ValidateRecords.
var (
	// ErrInvalidID indicates an empty id, an id with empty segments, or a leaf without status.
	ErrInvalidID = errors.New("invalid record id")
	// ErrPathMismatch indicates a path that is not the parent folder of the id.
	ErrPathMismatch = errors.New("record path does not match id")
	// ErrIDCollision indicates a leaf id that is also the id of a synthesized folder.
	ErrIDCollision = errors.New("leaf id collides with folder id")
	// ErrDuplicateID indicates the same leaf id appearing more than once.
	ErrDuplicateID = errors.New("duplicate record id")
)

// ValidationError describes the record that failed validation.
type ValidationError struct {
	Index int    // position of the record in the input
	ID    string // offending id
	Err   error  // one of the Err* sentinels
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d (%q): %v", e.Index, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
