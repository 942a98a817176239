// Package models defines the core domain models for graph-based workflow execution.
package models

import "time"

// WorkflowDefinition is the stored graph of nodes, edges and default
// variables. The engine reads an immutable snapshot at execution start;
// edits to the live definition never affect in-flight executions.
type WorkflowDefinition struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"   validate:"required"`
	Name      string         `json:"name"        validate:"required,min=3"`
	Nodes     []*Node        `json:"nodes"`
	Edges     []*Edge        `json:"edges"`
	Variables map[string]any `json:"variables"`
	Schedule  string         `json:"schedule,omitempty"` // optional cron spec for the schedule source
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Edge connects two nodes. An edge with a non-empty Condition is only
// followed when the expression evaluates to true against the post-merge
// variables of the source frontier.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"    validate:"required"`
	Target    string `json:"target"    validate:"required"`
	Condition string `json:"condition,omitempty"`
}

// NodeByID returns the node with the given id, if present.
func (w *WorkflowDefinition) NodeByID(id string) (*Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return nil, false
}

// OutgoingEdges returns all edges whose source is the given node id.
func (w *WorkflowDefinition) OutgoingEdges(nodeID string) []*Edge {
	edges := make([]*Edge, 0)

	for _, e := range w.Edges {
		if e.Source == nodeID {
			edges = append(edges, e)
		}
	}

	return edges
}
