package engine

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to callers. All are local and recoverable; none
// should terminate the process.
var (
	// ErrTaskNotFound means a task id did not resolve to any known task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskAlreadyCompleted means the task was already handled; callers
	// should report it as such rather than as a generic failure so a
	// double-submit does not look like a double-reward.
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	// ErrLibraryItemNotFound means a library id did not resolve.
	ErrLibraryItemNotFound = errors.New("library item not found")
	// ErrInvalidConfig means a configuration edit was rejected at the
	// boundary and never reached the scheduler.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PersistError wraps a durable-store write failure. The mutation it follows
// is kept in memory; callers may retry via Flush without losing state.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist aggregate: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
