package trigger

import (
	"context"
	"testing"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerNode_Execute_PassesTriggerDataVerbatim(t *testing.T) {
	payload := map[string]any{"score": float64(70), "source": "webhook"}
	execCtx := &models.ExecutionContext{
		ExecutionID: "exec-1",
		Variables:   map[string]any{"trigger": payload},
	}

	node := NewTriggerNode()

	output, err := node.Execute(context.Background(), execCtx, &models.Node{ID: "t1", Type: models.NodeTypeTrigger})
	require.NoError(t, err)

	assert.Equal(t, payload, output["trigger"])
}
