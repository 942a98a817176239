package models

import "time"

// ExecutionStatus is the lifecycle state of an execution. Running is the
// initial state; completed and failed are terminal and mutually exclusive.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Execution is one run of a workflow definition against a trigger payload.
// The engine mutates only variables and step rows until it writes the
// terminal status once.
type Execution struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id" validate:"required"`
	TenantID     string          `json:"tenant_id"   validate:"required"`
	Status       ExecutionStatus `json:"status"`
	TriggerData  map[string]any  `json:"trigger_data,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	DurationMS   *int64          `json:"duration_ms,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// StepStatus is the lifecycle state of a single node invocation record.
type StepStatus string

const (
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// ExecutionStep is the append-only audit record of one node invocation.
// It is never mutated after its completed/failed update.
type ExecutionStep struct {
	ID           string         `json:"id"`
	ExecutionID  string         `json:"execution_id"`
	NodeID       string         `json:"node_id"`
	NodeType     NodeType       `json:"node_type"`
	Status       StepStatus     `json:"status"`
	InputData    map[string]any `json:"input_data,omitempty"`
	OutputData   map[string]any `json:"output_data,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	DurationMS   *int64         `json:"duration_ms,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	RetryCount   int            `json:"retry_count"`
	NextRetryAt  *time.Time     `json:"next_retry_at,omitempty"`
}
