package trigger

import (
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
)

// TriggerNodeFactory creates TriggerNode instances.
type TriggerNodeFactory struct{}

func NewTriggerNodeFactory() protocol.NodeExecutorFactory {
	return &TriggerNodeFactory{}
}

func (f *TriggerNodeFactory) Create(_ *protocol.Collaborators) protocol.NodeExecutor {
	return NewTriggerNode()
}

func (f *TriggerNodeFactory) Type() models.NodeType {
	return models.NodeTypeTrigger
}

func (f *TriggerNodeFactory) Description() string {
	return "Entry point of a workflow. Re-emits the trigger payload as the 'trigger' variable."
}

func (f *TriggerNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	}
}
