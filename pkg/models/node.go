package models

// NodeType is the kind of a workflow node. The scheduler dispatches on this
// through the executor registry; unknown types abort the run.
type NodeType string

const (
	NodeTypeTrigger   NodeType = "trigger"
	NodeTypeAction    NodeType = "action"
	NodeTypeAIAction  NodeType = "ai_action"
	NodeTypeCondition NodeType = "condition"
	NodeTypeDelay     NodeType = "delay"
)

// Action names carried in an action node's Data["action"].
const (
	ActionSendEmail    = "send_email"
	ActionCreateTask   = "create_task"
	ActionUpdateRecord = "update_record"
	ActionWebhook      = "webhook"
	ActionWaitForInput = "wait_for_input"
)

// AI action names carried in an ai_action node's Data["action"].
const (
	AIActionGenerateText     = "generate_text"
	AIActionAnalyzeSentiment = "analyze_sentiment"
	AIActionSummarize        = "summarize"
)

// Node is one vertex of a workflow graph. Data is a type-specific
// configuration bag validated against the executor factory's schema at
// definition load time.
type Node struct {
	ID   string         `json:"id"   validate:"required"`
	Type NodeType       `json:"type" validate:"required"`
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

// MaxRetries reads the optional per-node retry budget from the config bag.
// Zero means the node is never retried.
func (n *Node) MaxRetries() int {
	if n.Data == nil {
		return 0
	}

	switch v := n.Data["max_retries"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
