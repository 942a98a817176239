package aiaction

import (
	"context"
	"testing"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIActionNode_GenerateText(t *testing.T) {
	bundle, _, _, _, _, ai := testutil.NewCollaborators()
	ai.Reply = "Dear Ada, welcome aboard."
	node := NewAIActionNode(bundle)

	execCtx := &models.ExecutionContext{
		TenantID:  "tenant-1",
		Variables: map[string]any{"name": "Ada"},
	}

	output, err := node.Execute(context.Background(), execCtx, &models.Node{
		ID:   "ai1",
		Type: models.NodeTypeAIAction,
		Data: testutil.ActionData(models.AIActionGenerateText, map[string]any{
			"prompt": "Write a welcome note for {{name}}",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "Dear Ada, welcome aboard.", output["generated_text"])

	require.Len(t, ai.Requests, 1)
	assert.Equal(t, "Write a welcome note for Ada", ai.Requests[0].Prompt)
	assert.Equal(t, defaultGenerateMaxTokens, ai.Requests[0].MaxTokens)
}

func TestAIActionNode_AnalyzeSentiment_NormalizesResult(t *testing.T) {
	bundle, _, _, _, _, ai := testutil.NewCollaborators()
	ai.Reply = "  Positive \n"
	node := NewAIActionNode(bundle)

	execCtx := &models.ExecutionContext{Variables: map[string]any{"review": "great product"}}

	output, err := node.Execute(context.Background(), execCtx, &models.Node{
		ID:   "ai1",
		Type: models.NodeTypeAIAction,
		Data: testutil.ActionData(models.AIActionAnalyzeSentiment, map[string]any{
			"text": "{{review}}",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "positive", output["sentiment"])
	assert.Equal(t, defaultSentimentMaxTokens, ai.Requests[0].MaxTokens)
}

func TestAIActionNode_Summarize(t *testing.T) {
	bundle, _, _, _, _, ai := testutil.NewCollaborators()
	ai.Reply = "short version"
	node := NewAIActionNode(bundle)

	execCtx := &models.ExecutionContext{Variables: map[string]any{}}

	output, err := node.Execute(context.Background(), execCtx, &models.Node{
		ID:   "ai1",
		Type: models.NodeTypeAIAction,
		Data: testutil.ActionData(models.AIActionSummarize, map[string]any{
			"text": "a very long text",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "short version", output["summary"])
}

func TestAIActionNode_MaxTokensIsCapped(t *testing.T) {
	bundle, _, _, _, _, ai := testutil.NewCollaborators()
	node := NewAIActionNode(bundle)

	execCtx := &models.ExecutionContext{Variables: map[string]any{}}

	_, err := node.Execute(context.Background(), execCtx, &models.Node{
		ID:   "ai1",
		Type: models.NodeTypeAIAction,
		Data: testutil.ActionData(models.AIActionGenerateText, map[string]any{
			"prompt":     "hi",
			"max_tokens": float64(100000),
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, maxTokensCap, ai.Requests[0].MaxTokens)
}

func TestAIActionNode_UnknownAction(t *testing.T) {
	bundle, _, _, _, _, _ := testutil.NewCollaborators()
	node := NewAIActionNode(bundle)

	execCtx := &models.ExecutionContext{Variables: map[string]any{}}

	_, err := node.Execute(context.Background(), execCtx, &models.Node{
		ID:   "ai1",
		Type: models.NodeTypeAIAction,
		Data: testutil.ActionData("translate", nil),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ai_action type")
}
