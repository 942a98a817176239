package engine

import (
	"fmt"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/registry"
)

// ValidateDefinition checks a workflow definition before any node runs:
// duplicate node ids, dangling edge endpoints, unregistered node types,
// per-kind config schemas and cyclic graphs are all definition errors.
func ValidateDefinition(definition *models.WorkflowDefinition, reg *registry.Registry) error {
	seen := make(map[string]bool, len(definition.Nodes))

	for _, node := range definition.Nodes {
		if node.ID == "" {
			return fmt.Errorf("%w: node with empty id", ErrInvalidDefinition)
		}

		if seen[node.ID] {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalidDefinition, node.ID)
		}

		seen[node.ID] = true

		if !reg.IsRegistered(node.Type) {
			return fmt.Errorf("%w: node %s has unknown type %q", ErrInvalidDefinition, node.ID, node.Type)
		}

		if err := reg.ValidateNodeData(node); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
	}

	for _, edge := range definition.Edges {
		if !seen[edge.Source] {
			return fmt.Errorf("%w: edge %s references missing source node %s", ErrInvalidDefinition, edge.ID, edge.Source)
		}

		if !seen[edge.Target] {
			return fmt.Errorf("%w: edge %s references missing target node %s", ErrInvalidDefinition, edge.ID, edge.Target)
		}
	}

	return detectCycles(definition)
}

// detectCycles runs Kahn's algorithm over the edge graph. Conditional edges
// count as edges here: a cycle that is never taken at runtime is still an
// invalid definition.
func detectCycles(definition *models.WorkflowDefinition) error {
	indegree := make(map[string]int, len(definition.Nodes))
	outgoing := make(map[string][]string, len(definition.Nodes))

	for _, node := range definition.Nodes {
		indegree[node.ID] = 0
	}

	for _, edge := range definition.Edges {
		outgoing[edge.Source] = append(outgoing[edge.Source], edge.Target)
		indegree[edge.Target]++
	}

	queue := make([]string, 0, len(indegree))
	for id, degree := range indegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++

		for _, target := range outgoing[id] {
			indegree[target]--
			if indegree[target] == 0 {
				queue = append(queue, target)
			}
		}
	}

	if processed != len(definition.Nodes) {
		return ErrCyclicDefinition
	}

	return nil
}
