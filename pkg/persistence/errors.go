// Package persistence provides standardized error types for persistence operations.
package persistence

import "errors"

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow definition was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates an execution was not found.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrStepNotFound indicates an execution step was not found.
	ErrStepNotFound = errors.New("execution step not found")

	// ErrExecutionAlreadyClaimed indicates another supervisor holds the
	// single-writer claim for the execution.
	ErrExecutionAlreadyClaimed = errors.New("execution already claimed")

	// ErrExecutionFinished indicates the execution already carries a
	// terminal status.
	ErrExecutionFinished = errors.New("execution already finished")
)

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsExecutionAlreadyClaimed checks if an error indicates the execution is
// claimed by another supervisor.
func IsExecutionAlreadyClaimed(err error) bool {
	return errors.Is(err, ErrExecutionAlreadyClaimed)
}
