package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowd-sh/flowd/pkg/eventbus"
	"github.com/flowd-sh/flowd/pkg/events"
	"github.com/flowd-sh/flowd/pkg/lease"
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/otelhelper"
	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/registry"
)

// Supervisor loads an execution and its immutable definition snapshot, claims
// single-writer ownership, runs the scheduler and writes the terminal status
// exactly once.
type Supervisor struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	scheduler   *Scheduler
	publisher   eventbus.EventPublisher
	lease       lease.ExecutionLease
	tracer      trace.Tracer
	logger      *slog.Logger
	now         func() time.Time
}

type SupervisorOption func(*Supervisor)

// WithLease layers a distributed lease on top of the database claim.
func WithLease(l lease.ExecutionLease) SupervisorOption {
	return func(s *Supervisor) {
		s.lease = l
	}
}

func WithTracer(tracer trace.Tracer) SupervisorOption {
	return func(s *Supervisor) {
		s.tracer = tracer
	}
}

func NewSupervisor(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	collaborators *protocol.Collaborators,
	publisher eventbus.EventPublisher,
	opts ...SupervisorOption,
) *Supervisor {
	recorder := NewStepRecorder(persist.Steps(), logger)

	s := &Supervisor{
		persistence: persist,
		registry:    reg,
		scheduler:   NewScheduler(logger, reg, collaborators, recorder, publisher),
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.scheduler.tracer = s.tracer

	return s
}

// ExecuteWorkflow runs one execution to its terminal status. It is invoked
// once per execution id; a duplicate invocation loses the claim and returns
// ErrExecutionAlreadyClaimed without touching any state.
func (s *Supervisor) ExecuteWorkflow(ctx context.Context, executionID, tenantID string) error {
	logger := s.logger.With("execution_id", executionID, "tenant_id", tenantID)

	execution, err := s.persistence.Executions().GetByID(ctx, tenantID, executionID)
	if err != nil {
		return fmt.Errorf("failed to load execution %s: %w", executionID, err)
	}

	definition, err := s.persistence.Workflows().GetByID(ctx, tenantID, execution.WorkflowID)
	if err != nil {
		return fmt.Errorf("failed to load workflow %s: %w", execution.WorkflowID, err)
	}

	if s.lease != nil {
		acquired, leaseErr := s.lease.Acquire(ctx, executionID, lease.DefaultTTL)
		if leaseErr != nil {
			return fmt.Errorf("failed to acquire execution lease: %w", leaseErr)
		}

		if !acquired {
			return persistence.ErrExecutionAlreadyClaimed
		}

		defer func() {
			if releaseErr := s.lease.Release(ctx, executionID); releaseErr != nil {
				logger.ErrorContext(ctx, "Failed to release execution lease", "error", releaseErr)
			}
		}()
	}

	err = s.persistence.Executions().Claim(ctx, tenantID, executionID)
	if err != nil {
		return fmt.Errorf("failed to claim execution %s: %w", executionID, err)
	}

	if s.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, s.tracer, "engine.execute_workflow",
			attribute.String(otelhelper.ExecutionIDKey, executionID),
			attribute.String(otelhelper.WorkflowIDKey, definition.ID),
			attribute.String(otelhelper.TenantIDKey, tenantID),
		)
		defer span.End()
	}

	err = ValidateDefinition(definition, s.registry)
	if err != nil {
		logger.ErrorContext(ctx, "Workflow definition invalid", "error", err)

		if finishErr := s.finish(ctx, logger, definition, execution, 0, err); finishErr != nil {
			return finishErr
		}

		return err
	}

	execCtx := &models.ExecutionContext{
		ExecutionID: executionID,
		TenantID:    tenantID,
		Variables:   seedVariables(definition, execution),
	}

	logger.InfoContext(ctx, "Starting workflow execution", "workflow_id", definition.ID)
	s.publishStarted(ctx, definition, execution, execCtx)

	executed, runErr := s.scheduler.Run(ctx, definition, execCtx)

	err = s.finish(ctx, logger, definition, execution, executed, runErr)
	if err != nil {
		return err
	}

	if runErr == nil {
		s.publishCompleted(ctx, definition, execution, execCtx, executed)
	}

	return runErr
}

// finish writes the terminal status once and publishes the failure event when
// the run aborted.
func (s *Supervisor) finish(ctx context.Context, logger *slog.Logger, definition *models.WorkflowDefinition, execution *models.Execution, executed int, runErr error) error {
	completedAt := s.now().UTC()
	durationMS := completedAt.Sub(execution.StartedAt).Milliseconds()

	status := models.ExecutionStatusCompleted
	errorMessage := ""

	if runErr != nil {
		status = models.ExecutionStatusFailed
		errorMessage = runErr.Error()
	}

	err := s.persistence.Executions().Finish(ctx, execution.TenantID, execution.ID, status, completedAt, durationMS, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to finalize execution %s: %w", execution.ID, err)
	}

	logger.InfoContext(ctx, "Workflow execution finished",
		"status", status, "duration_ms", durationMS, "nodes_executed", executed)

	if runErr != nil {
		s.publishFailed(ctx, definition, execution, executed, durationMS, runErr)
	}

	return nil
}

// seedVariables builds the initial variable space: definition defaults, then
// the trigger payload's own keys (interpolation reads a flat map, so trigger
// fields must be addressable directly), then the full payload as {trigger}.
func seedVariables(definition *models.WorkflowDefinition, execution *models.Execution) map[string]any {
	variables := make(map[string]any, len(definition.Variables)+len(execution.TriggerData)+1)

	for key, value := range definition.Variables {
		variables[key] = value
	}

	for key, value := range execution.TriggerData {
		variables[key] = value
	}

	variables["trigger"] = execution.TriggerData

	return variables
}

func (s *Supervisor) publishStarted(ctx context.Context, definition *models.WorkflowDefinition, execution *models.Execution, execCtx *models.ExecutionContext) {
	if s.publisher == nil {
		return
	}

	event := events.ExecutionStarted{
		BaseEvent:    events.NewBaseEvent(events.ExecutionStartedEvent, definition.ID, execution.TenantID),
		ExecutionID:  execution.ID,
		WorkflowName: definition.Name,
		TriggerData:  execution.TriggerData,
		Variables:    execCtx.Variables,
	}

	err := s.publisher.Publish(ctx, execution.ID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish execution started event", "error", err)
	}
}

func (s *Supervisor) publishCompleted(ctx context.Context, definition *models.WorkflowDefinition, execution *models.Execution, execCtx *models.ExecutionContext, executed int) {
	if s.publisher == nil {
		return
	}

	completedAt := s.now().UTC()

	event := events.ExecutionCompleted{
		BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, definition.ID, execution.TenantID),
		ExecutionID:   execution.ID,
		DurationMs:    completedAt.Sub(execution.StartedAt).Milliseconds(),
		NodesExecuted: executed,
		FinalResults:  execCtx.Variables,
	}

	err := s.publisher.Publish(ctx, execution.ID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish execution completed event", "error", err)
	}
}

func (s *Supervisor) publishFailed(ctx context.Context, definition *models.WorkflowDefinition, execution *models.Execution, executed int, durationMS int64, runErr error) {
	if s.publisher == nil {
		return
	}

	var nodeErr *NodeError

	nodeID := ""
	if errors.As(runErr, &nodeErr) {
		nodeID = nodeErr.NodeID
	}

	event := events.ExecutionFailed{
		BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, definition.ID, execution.TenantID),
		ExecutionID:   execution.ID,
		DurationMs:    durationMS,
		NodesExecuted: executed,
		NodeID:        nodeID,
		Error:         runErr.Error(),
	}

	err := s.publisher.Publish(ctx, execution.ID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish execution failed event", "error", err)
	}
}
