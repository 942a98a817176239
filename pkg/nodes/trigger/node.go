// Package trigger provides the trigger node executor, a pass-through that
// makes the original trigger payload addressable as a variable.
package trigger

import (
	"context"

	"github.com/flowd-sh/flowd/pkg/models"
)

type TriggerNode struct{}

func NewTriggerNode() *TriggerNode {
	return &TriggerNode{}
}

// Execute re-emits the trigger payload verbatim. The supervisor seeds the
// variable space with {trigger: trigger_data} before the first frontier, so
// an explicit trigger node always exposes exactly that payload.
func (n *TriggerNode) Execute(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node) (map[string]any, error) {
	return map[string]any{"trigger": execCtx.Variables["trigger"]}, nil
}
