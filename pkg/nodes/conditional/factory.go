package conditional

import (
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
)

// ConditionNodeFactory creates ConditionNode instances.
type ConditionNodeFactory struct{}

func NewConditionNodeFactory() protocol.NodeExecutorFactory {
	return &ConditionNodeFactory{}
}

func (f *ConditionNodeFactory) Create(_ *protocol.Collaborators) protocol.NodeExecutor {
	return NewConditionNode()
}

func (f *ConditionNodeFactory) Type() models.NodeType {
	return models.NodeTypeCondition
}

func (f *ConditionNodeFactory) Description() string {
	return "Evaluates a comparison and exposes the boolean outcome as a variable."
}

func (f *ConditionNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value1": map[string]any{"type": "string"},
			"operator": map[string]any{
				"type": "string",
				"enum": []any{"===", "!==", ">", "<"},
			},
			"value2": map[string]any{"type": "string"},
		},
		"required": []any{"value1", "operator", "value2"},
	}
}
