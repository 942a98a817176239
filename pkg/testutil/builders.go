package testutil

import (
	"time"

	"github.com/flowd-sh/flowd/pkg/models"
)

// WorkflowBuilder assembles workflow definitions for tests.
type WorkflowBuilder struct {
	definition *models.WorkflowDefinition
}

func NewWorkflow(id string) *WorkflowBuilder {
	return &WorkflowBuilder{
		definition: &models.WorkflowDefinition{
			ID:        id,
			TenantID:  "tenant-1",
			Name:      "test workflow",
			Nodes:     []*models.Node{},
			Edges:     []*models.Edge{},
			Variables: map[string]any{},
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		},
	}
}

func (b *WorkflowBuilder) WithTenant(tenantID string) *WorkflowBuilder {
	b.definition.TenantID = tenantID

	return b
}

func (b *WorkflowBuilder) WithVariable(key string, value any) *WorkflowBuilder {
	b.definition.Variables[key] = value

	return b
}

func (b *WorkflowBuilder) WithNode(id string, nodeType models.NodeType, data map[string]any) *WorkflowBuilder {
	b.definition.Nodes = append(b.definition.Nodes, &models.Node{
		ID:   id,
		Type: nodeType,
		Name: id,
		Data: data,
	})

	return b
}

func (b *WorkflowBuilder) WithEdge(source, target string) *WorkflowBuilder {
	return b.WithConditionalEdge(source, target, "")
}

func (b *WorkflowBuilder) WithConditionalEdge(source, target, cond string) *WorkflowBuilder {
	b.definition.Edges = append(b.definition.Edges, &models.Edge{
		ID:        source + "->" + target,
		Source:    source,
		Target:    target,
		Condition: cond,
	})

	return b
}

func (b *WorkflowBuilder) Build() *models.WorkflowDefinition {
	return b.definition
}

// ActionData builds an action node's Data bag.
func ActionData(action string, config map[string]any) map[string]any {
	return map[string]any{"action": action, "config": config}
}
