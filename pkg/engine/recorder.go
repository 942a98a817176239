package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence"
)

// StepRecorder writes the per-node audit trail: a running row with the
// variable snapshot when a node starts, updated once to completed or failed.
type StepRecorder struct {
	steps  persistence.StepRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewStepRecorder(steps persistence.StepRepository, logger *slog.Logger) *StepRecorder {
	return &StepRecorder{
		steps:  steps,
		logger: logger,
		now:    time.Now,
	}
}

func (r *StepRecorder) Start(ctx context.Context, execCtx *models.ExecutionContext, node *models.Node) (*models.ExecutionStep, error) {
	step := &models.ExecutionStep{
		ExecutionID: execCtx.ExecutionID,
		NodeID:      node.ID,
		NodeType:    node.Type,
		Status:      models.StepStatusRunning,
		InputData:   execCtx.SnapshotVariables(),
		StartedAt:   r.now().UTC(),
	}

	err := r.steps.Insert(ctx, step)
	if err != nil {
		return nil, fmt.Errorf("failed to record step start for node %s: %w", node.ID, err)
	}

	return step, nil
}

func (r *StepRecorder) Complete(ctx context.Context, step *models.ExecutionStep, output map[string]any) error {
	completedAt := r.now().UTC()
	durationMS := completedAt.Sub(step.StartedAt).Milliseconds()

	step.Status = models.StepStatusCompleted
	step.OutputData = output
	step.CompletedAt = &completedAt
	step.DurationMS = &durationMS

	err := r.steps.Update(ctx, step)
	if err != nil {
		return fmt.Errorf("failed to record step completion for node %s: %w", step.NodeID, err)
	}

	return nil
}

func (r *StepRecorder) Fail(ctx context.Context, step *models.ExecutionStep, cause error) error {
	completedAt := r.now().UTC()
	durationMS := completedAt.Sub(step.StartedAt).Milliseconds()

	step.Status = models.StepStatusFailed
	step.ErrorMessage = cause.Error()
	step.CompletedAt = &completedAt
	step.DurationMS = &durationMS

	err := r.steps.Update(ctx, step)
	if err != nil {
		return fmt.Errorf("failed to record step failure for node %s: %w", step.NodeID, err)
	}

	return nil
}

// Retrying bumps the retry counter while the step row stays running.
func (r *StepRecorder) Retrying(ctx context.Context, step *models.ExecutionStep, retryCount int, nextRetryAt time.Time) error {
	step.RetryCount = retryCount
	step.NextRetryAt = &nextRetryAt

	err := r.steps.Update(ctx, step)
	if err != nil {
		return fmt.Errorf("failed to record retry for node %s: %w", step.NodeID, err)
	}

	return nil
}
