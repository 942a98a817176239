package models

// ExecutionContext is the in-memory state of a run. Variables is seeded with
// the definition defaults plus {trigger: trigger_data} and mutated by node
// output merges; it is never shared across executions.
type ExecutionContext struct {
	ExecutionID string         `json:"execution_id"`
	TenantID    string         `json:"tenant_id"`
	Variables   map[string]any `json:"variables"`
	CurrentNode string         `json:"current_node,omitempty"`
}

// SnapshotVariables returns a shallow copy of the variable map, used as the
// step's input_data before a node runs.
func (c *ExecutionContext) SnapshotVariables() map[string]any {
	snapshot := make(map[string]any, len(c.Variables))
	for k, v := range c.Variables {
		snapshot[k] = v
	}

	return snapshot
}

// MergeOutput folds a node's output map into the variable space. Key
// collisions resolve to the value merged last.
func (c *ExecutionContext) MergeOutput(output map[string]any) {
	if c.Variables == nil {
		c.Variables = make(map[string]any, len(output))
	}

	for k, v := range output {
		c.Variables[k] = v
	}
}
