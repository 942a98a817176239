// Package memory provides an in-memory persistence implementation used by
// tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence"
)

// Persistence keeps all state in process memory, guarded by one mutex.
type Persistence struct {
	mu         sync.Mutex
	workflows  map[string]*models.WorkflowDefinition
	executions map[string]*models.Execution
	claimed    map[string]time.Time
	steps      map[string][]*models.ExecutionStep
}

// NewPersistence creates an empty in-memory store.
func NewPersistence() *Persistence {
	return &Persistence{
		workflows:  make(map[string]*models.WorkflowDefinition),
		executions: make(map[string]*models.Execution),
		claimed:    make(map[string]time.Time),
		steps:      make(map[string][]*models.ExecutionStep),
	}
}

func (p *Persistence) Workflows() persistence.WorkflowRepository   { return (*workflowRepo)(p) }
func (p *Persistence) Executions() persistence.ExecutionRepository { return (*executionRepo)(p) }
func (p *Persistence) Steps() persistence.StepRepository           { return (*stepRepo)(p) }

func (p *Persistence) HealthCheck(_ context.Context) error { return nil }

func (p *Persistence) Close(_ context.Context) error { return nil }

type workflowRepo Persistence

func (r *workflowRepo) GetByID(_ context.Context, tenantID, id string) (*models.WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workflow, ok := r.workflows[id]
	if !ok || workflow.TenantID != tenantID {
		return nil, persistence.ErrWorkflowNotFound
	}

	return cloneWorkflow(workflow), nil
}

func (r *workflowRepo) List(_ context.Context, tenantID string) ([]*models.WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workflows := make([]*models.WorkflowDefinition, 0)

	for _, workflow := range r.workflows {
		if workflow.TenantID == tenantID {
			workflows = append(workflows, cloneWorkflow(workflow))
		}
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *workflowRepo) ListScheduled(_ context.Context) ([]*models.WorkflowDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workflows := make([]*models.WorkflowDefinition, 0)

	for _, workflow := range r.workflows {
		if workflow.Schedule != "" {
			workflows = append(workflows, cloneWorkflow(workflow))
		}
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].ID < workflows[j].ID
	})

	return workflows, nil
}

func (r *workflowRepo) Save(_ context.Context, workflow *models.WorkflowDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now
	r.workflows[workflow.ID] = cloneWorkflow(workflow)

	return nil
}

func (r *workflowRepo) Delete(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	workflow, ok := r.workflows[id]
	if !ok || workflow.TenantID != tenantID {
		return persistence.ErrWorkflowNotFound
	}

	delete(r.workflows, id)

	return nil
}

type executionRepo Persistence

func (r *executionRepo) Create(_ context.Context, execution *models.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}

	if execution.Status == "" {
		execution.Status = models.ExecutionStatusRunning
	}

	if execution.StartedAt.IsZero() {
		execution.StartedAt = time.Now().UTC()
	}

	stored := *execution
	r.executions[execution.ID] = &stored

	return nil
}

func (r *executionRepo) GetByID(_ context.Context, tenantID, id string) (*models.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	execution, ok := r.executions[id]
	if !ok || execution.TenantID != tenantID {
		return nil, persistence.ErrExecutionNotFound
	}

	copied := *execution

	return &copied, nil
}

func (r *executionRepo) Claim(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	execution, ok := r.executions[id]
	if !ok || execution.TenantID != tenantID {
		return persistence.ErrExecutionNotFound
	}

	if execution.Status != models.ExecutionStatusRunning {
		return persistence.ErrExecutionAlreadyClaimed
	}

	if _, taken := r.claimed[id]; taken {
		return persistence.ErrExecutionAlreadyClaimed
	}

	r.claimed[id] = time.Now().UTC()

	return nil
}

func (r *executionRepo) Finish(_ context.Context, tenantID, id string, status models.ExecutionStatus, completedAt time.Time, durationMS int64, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	execution, ok := r.executions[id]
	if !ok || execution.TenantID != tenantID {
		return persistence.ErrExecutionNotFound
	}

	if execution.Status != models.ExecutionStatusRunning {
		return persistence.ErrExecutionFinished
	}

	execution.Status = status
	execution.CompletedAt = &completedAt
	execution.DurationMS = &durationMS
	execution.ErrorMessage = errorMessage

	return nil
}

type stepRepo Persistence

func (r *stepRepo) Insert(_ context.Context, step *models.ExecutionStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if step.ID == "" {
		step.ID = uuid.New().String()
	}

	stored := *step
	r.steps[step.ExecutionID] = append(r.steps[step.ExecutionID], &stored)

	return nil
}

func (r *stepRepo) Update(_ context.Context, step *models.ExecutionStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, stored := range r.steps[step.ExecutionID] {
		if stored.ID == step.ID {
			copied := *step
			r.steps[step.ExecutionID][i] = &copied

			return nil
		}
	}

	return persistence.ErrStepNotFound
}

func (r *stepRepo) ListByExecution(_ context.Context, executionID string) ([]*models.ExecutionStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	steps := make([]*models.ExecutionStep, 0, len(r.steps[executionID]))

	for _, stored := range r.steps[executionID] {
		copied := *stored
		steps = append(steps, &copied)
	}

	return steps, nil
}

func cloneWorkflow(workflow *models.WorkflowDefinition) *models.WorkflowDefinition {
	copied := *workflow
	copied.Nodes = append([]*models.Node(nil), workflow.Nodes...)
	copied.Edges = append([]*models.Edge(nil), workflow.Edges...)

	if workflow.Variables != nil {
		copied.Variables = make(map[string]any, len(workflow.Variables))
		for key, value := range workflow.Variables {
			copied.Variables[key] = value
		}
	}

	return &copied
}
