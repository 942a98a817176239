// Package registry maps node types to executor factories and validates node
// configuration against each factory's schema.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger    *slog.Logger
	factories map[models.NodeType]protocol.NodeExecutorFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.NodeType]protocol.NodeExecutorFactory),
	}
}

func (r *Registry) Register(factory protocol.NodeExecutorFactory) {
	r.factories[factory.Type()] = factory
}

// CreateExecutor builds an executor for the node type wired to the given
// collaborator bundle. Unknown types are a node execution error.
func (r *Registry) CreateExecutor(nodeType models.NodeType, collaborators *protocol.Collaborators) (protocol.NodeExecutor, error) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type %q not registered", nodeType)
	}

	return factory.Create(collaborators), nil
}

// IsRegistered reports whether a factory exists for the node type.
func (r *Registry) IsRegistered(nodeType models.NodeType) bool {
	_, ok := r.factories[nodeType]

	return ok
}

// ValidateNodeData checks a node's Data bag against its factory schema.
// Called at definition load time so bad configs surface before any node runs.
func (r *Registry) ValidateNodeData(node *models.Node) error {
	factory, ok := r.factories[node.Type]
	if !ok {
		return fmt.Errorf("node type %q not registered", node.Type)
	}

	data := node.Data
	if data == nil {
		data = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate config for node %s: %w", node.ID, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}

		return fmt.Errorf("invalid config for node %s: %s", node.ID, strings.Join(details, "; "))
	}

	return nil
}
