package action

import (
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
)

// ActionNodeFactory creates ActionNode instances.
type ActionNodeFactory struct{}

func NewActionNodeFactory() protocol.NodeExecutorFactory {
	return &ActionNodeFactory{}
}

func (f *ActionNodeFactory) Create(collaborators *protocol.Collaborators) protocol.NodeExecutor {
	return NewActionNode(collaborators)
}

func (f *ActionNodeFactory) Type() models.NodeType {
	return models.NodeTypeAction
}

func (f *ActionNodeFactory) Description() string {
	return "Performs one external side effect: send an email, create a task, update a record, call a webhook, or request user input."
}

func (f *ActionNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []any{
					models.ActionSendEmail,
					models.ActionCreateTask,
					models.ActionUpdateRecord,
					models.ActionWebhook,
					models.ActionWaitForInput,
				},
			},
			"config": map[string]any{
				"type": "object",
			},
			"max_retries": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 10,
			},
		},
		"required": []any{"action"},
	}
}
