// Package registry provides built-in node factory registration.
package registry

import (
	"github.com/flowd-sh/flowd/pkg/nodes/action"
	"github.com/flowd-sh/flowd/pkg/nodes/aiaction"
	"github.com/flowd-sh/flowd/pkg/nodes/conditional"
	"github.com/flowd-sh/flowd/pkg/nodes/delay"
	"github.com/flowd-sh/flowd/pkg/nodes/trigger"
)

// RegisterDefaultNodes registers all built-in node executor factories.
func (r *Registry) RegisterDefaultNodes() {
	r.Register(trigger.NewTriggerNodeFactory())
	r.Register(action.NewActionNodeFactory())
	r.Register(aiaction.NewAIActionNodeFactory())
	r.Register(conditional.NewConditionNodeFactory())
	r.Register(delay.NewDelayNodeFactory())
}
