// Package aiaction provides the ai_action node executor: a single bounded
// call to the tenant's AI completion provider.
package aiaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/template"
)

const (
	defaultModel = "gpt-4o-mini"

	maxTokensCap              = 4096
	defaultGenerateMaxTokens  = 1000
	defaultSentimentMaxTokens = 10
	defaultSummaryMaxTokens   = 300
)

type AIActionNode struct {
	collaborators *protocol.Collaborators
}

func NewAIActionNode(collaborators *protocol.Collaborators) *AIActionNode {
	return &AIActionNode{collaborators: collaborators}
}

func (n *AIActionNode) Execute(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node) (map[string]any, error) {
	actionName, _ := node.Data["action"].(string)
	config, _ := node.Data["config"].(map[string]any)

	if config == nil {
		config = make(map[string]any)
	}

	switch actionName {
	case models.AIActionGenerateText:
		prompt := n.render(config, "prompt", execCtx)

		text, err := n.complete(ctx, config, prompt, defaultGenerateMaxTokens)
		if err != nil {
			return nil, err
		}

		return map[string]any{"generated_text": text}, nil
	case models.AIActionAnalyzeSentiment:
		text := n.render(config, "text", execCtx)
		prompt := "Classify the sentiment of the following text as positive, negative or neutral. " +
			"Answer with the single word only.\n\n" + text

		result, err := n.complete(ctx, config, prompt, defaultSentimentMaxTokens)
		if err != nil {
			return nil, err
		}

		return map[string]any{"sentiment": strings.ToLower(strings.TrimSpace(result))}, nil
	case models.AIActionSummarize:
		text := n.render(config, "text", execCtx)
		prompt := "Summarize the following text in a short paragraph.\n\n" + text

		summary, err := n.complete(ctx, config, prompt, defaultSummaryMaxTokens)
		if err != nil {
			return nil, err
		}

		return map[string]any{"summary": summary}, nil
	default:
		return nil, fmt.Errorf("unknown ai_action type %q for node %s", actionName, node.ID)
	}
}

func (n *AIActionNode) complete(ctx context.Context, config map[string]any, prompt string, defaultMaxTokens int) (string, error) {
	model, _ := config["model"].(string)
	if model == "" {
		model = defaultModel
	}

	maxTokens := defaultMaxTokens
	if v, ok := config["max_tokens"].(float64); ok && v > 0 {
		maxTokens = int(v)
	}

	if maxTokens > maxTokensCap {
		maxTokens = maxTokensCap
	}

	text, err := n.collaborators.AI.Complete(ctx, protocol.CompletionRequest{
		Prompt:    prompt,
		Model:     model,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ai completion failed: %w", err)
	}

	return text, nil
}

func (n *AIActionNode) render(config map[string]any, key string, execCtx *models.ExecutionContext) string {
	raw, _ := config[key].(string)

	return template.Interpolate(raw, execCtx.Variables)
}
