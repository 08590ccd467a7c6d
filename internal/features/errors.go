package features

import (
	"errors"
	"fmt"
)

// ErrMalformedTask marks a task that breaks the expected record shape
var ErrMalformedTask = errors.New("malformed task")

// MalformedTaskError identifies the task that could not be projected
type MalformedTaskError struct {
	TaskID string
	Reason string
}

func (e *MalformedTaskError) Error() string {
	return fmt.Sprintf("malformed task %s: %s", e.TaskID, e.Reason)
}

// Is reports whether target is ErrMalformedTask
func (e *MalformedTaskError) Is(target error) bool {
	return target == ErrMalformedTask
}
