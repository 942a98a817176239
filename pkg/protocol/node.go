// Package protocol defines the interfaces and contracts between the engine
// and its node executors and external collaborators.
package protocol

import (
	"context"

	"github.com/flowd-sh/flowd/pkg/models"
)

// NodeExecutor performs the side-effecting work of one node kind. Execute is
// a function of (node config, execution context) returning the output map to
// merge into the variable space. An error aborts the whole run.
type NodeExecutor interface {
	Execute(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node) (map[string]any, error)
}

// NodeExecutorFactory creates executor instances and describes the node kind
// it serves.
type NodeExecutorFactory interface {
	// Create builds an executor wired to the given collaborator bundle.
	Create(collaborators *Collaborators) NodeExecutor

	// Type returns the node type this factory serves.
	Type() models.NodeType

	// Description returns a human-readable description of the node kind.
	Description() string

	// Schema returns the JSON schema a node's Data bag is validated
	// against at definition load time.
	Schema() map[string]any
}
