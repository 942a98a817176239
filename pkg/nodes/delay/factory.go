package delay

import (
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
)

// DelayNodeFactory creates DelayNode instances.
type DelayNodeFactory struct{}

func NewDelayNodeFactory() protocol.NodeExecutorFactory {
	return &DelayNodeFactory{}
}

func (f *DelayNodeFactory) Create(_ *protocol.Collaborators) protocol.NodeExecutor {
	return NewDelayNode()
}

func (f *DelayNodeFactory) Type() models.NodeType {
	return models.NodeTypeDelay
}

func (f *DelayNodeFactory) Description() string {
	return "Suspends the execution in memory for a capped duration. Not durable across restarts."
}

func (f *DelayNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration": map[string]any{"type": "number", "minimum": 0},
			"unit": map[string]any{
				"type": "string",
				"enum": []any{"seconds", "minutes", "hours", "days"},
			},
		},
		"required": []any{"duration"},
	}
}
