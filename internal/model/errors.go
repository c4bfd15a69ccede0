package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation references an id absent from the
// collection. No mutation has been performed.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected draft or patch. No mutation has been
// performed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// HasDependentsError is returned when deleting a location under the
// reject-if-referenced policy while items (or child locations) still
// reference it. No mutation has been performed.
type HasDependentsError struct {
	Count int
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("location has %d dependents", e.Count)
}

// PersistenceError reports a failed backing-store write. The in-memory
// mutation that triggered the write has already been applied, so callers must
// surface this distinctly: the change is live but may not survive a restart.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
