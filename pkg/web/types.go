// Package web provides HTTP request and response types for the execution API.
package web

import "github.com/flowd-sh/flowd/pkg/models"

// CreateWorkflowRequest is the request body for storing a workflow definition.
type CreateWorkflowRequest struct {
	Name      string         `json:"name"      validate:"required,min=3"`
	Nodes     []*models.Node `json:"nodes"`
	Edges     []*models.Edge `json:"edges"`
	Variables map[string]any `json:"variables,omitempty"`
	Schedule  string         `json:"schedule,omitempty"`
}

// TriggerExecutionRequest is the optional request body when starting an
// execution.
type TriggerExecutionRequest struct {
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

// ExecutionStartedResponse is the immediate acknowledgment returned while the
// graph runs in the background.
type ExecutionStartedResponse struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
}
