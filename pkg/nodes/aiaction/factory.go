package aiaction

import (
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
)

// AIActionNodeFactory creates AIActionNode instances.
type AIActionNodeFactory struct{}

func NewAIActionNodeFactory() protocol.NodeExecutorFactory {
	return &AIActionNodeFactory{}
}

func (f *AIActionNodeFactory) Create(collaborators *protocol.Collaborators) protocol.NodeExecutor {
	return NewAIActionNode(collaborators)
}

func (f *AIActionNodeFactory) Type() models.NodeType {
	return models.NodeTypeAIAction
}

func (f *AIActionNodeFactory) Description() string {
	return "Issues one bounded AI completion call: generate text, classify sentiment, or summarize."
}

func (f *AIActionNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []any{
					models.AIActionGenerateText,
					models.AIActionAnalyzeSentiment,
					models.AIActionSummarize,
				},
			},
			"config": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prompt":     map[string]any{"type": "string"},
					"text":       map[string]any{"type": "string"},
					"model":      map[string]any{"type": "string"},
					"max_tokens": map[string]any{"type": "integer", "minimum": 1, "maximum": maxTokensCap},
				},
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
