package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinition marks definition-level failures surfaced before any
// node runs.
var ErrInvalidDefinition = errors.New("invalid workflow definition")

// ErrCyclicDefinition is returned when the edge graph contains a cycle.
var ErrCyclicDefinition = fmt.Errorf("%w: graph contains a cycle", ErrInvalidDefinition)

// NodeError wraps an executor failure with the node that caused it. The
// scheduler aborts the whole run on the first NodeError.
type NodeError struct {
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// IsInvalidDefinition checks if an error is a definition error.
func IsInvalidDefinition(err error) bool {
	return errors.Is(err, ErrInvalidDefinition)
}
