// Package persistence provides the storage abstraction for workflow
// definitions, executions and execution steps.
package persistence

import (
	"context"
	"time"

	"github.com/flowd-sh/flowd/pkg/models"
)

// Persistence aggregates the repositories the engine needs.
type Persistence interface {
	Workflows() WorkflowRepository
	Executions() ExecutionRepository
	Steps() StepRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository is the read/write store for workflow definitions. The
// engine itself only reads; writes serve the management API.
type WorkflowRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*models.WorkflowDefinition, error)
	List(ctx context.Context, tenantID string) ([]*models.WorkflowDefinition, error)
	ListScheduled(ctx context.Context) ([]*models.WorkflowDefinition, error)
	Save(ctx context.Context, workflow *models.WorkflowDefinition) error
	Delete(ctx context.Context, tenantID, id string) error
}

// ExecutionRepository persists execution rows.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, tenantID, id string) (*models.Execution, error)

	// Claim transitions the execution into the single-writer state. It
	// must be conditional (only an unclaimed running execution can be
	// claimed) so two concurrent supervisors cannot both run the graph.
	Claim(ctx context.Context, tenantID, id string) error

	// Finish writes the terminal status exactly once.
	Finish(ctx context.Context, tenantID, id string, status models.ExecutionStatus, completedAt time.Time, durationMS int64, errorMessage string) error
}

// StepRepository persists the append-only step audit trail.
type StepRepository interface {
	Insert(ctx context.Context, step *models.ExecutionStep) error
	Update(ctx context.Context, step *models.ExecutionStep) error
	ListByExecution(ctx context.Context, executionID string) ([]*models.ExecutionStep, error)
}
