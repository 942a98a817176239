// Package conditional provides the condition node executor, which exposes a
// condition's outcome as a variable, separate from edge-level conditions.
package conditional

import (
	"context"
	"strings"

	"github.com/flowd-sh/flowd/pkg/condition"
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/template"
)

type ConditionNode struct{}

func NewConditionNode() *ConditionNode {
	return &ConditionNode{}
}

// Execute builds "<value1> <operator> <value2>" from interpolated operands
// and evaluates it. The boolean outcome is published under both
// condition_result and condition_value.
func (n *ConditionNode) Execute(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node) (map[string]any, error) {
	value1, _ := node.Data["value1"].(string)
	operator, _ := node.Data["operator"].(string)
	value2, _ := node.Data["value2"].(string)

	expr := strings.Join([]string{
		template.Interpolate(value1, execCtx.Variables),
		operator,
		template.Interpolate(value2, execCtx.Variables),
	}, " ")

	result := condition.Evaluate(expr, execCtx.Variables)

	return map[string]any{
		"condition_result": result,
		"condition_value":  result,
	}, nil
}
