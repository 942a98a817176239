// Package schedule runs cron-driven executions for workflow definitions that
// carry a cron spec.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flowd-sh/flowd/pkg/eventbus"
	"github.com/flowd-sh/flowd/pkg/events"
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence"
)

// Source loads every scheduled definition at startup and registers one cron
// entry per workflow. Each tick creates an execution row and publishes an
// execution.requested event for a worker to pick up.
type Source struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	cron        *cron.Cron
}

func NewSource(logger *slog.Logger, persist persistence.Persistence, publisher eventbus.EventPublisher) *Source {
	return &Source{
		persistence: persist,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *Source) Start(ctx context.Context) error {
	workflows, err := s.persistence.Workflows().ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scheduled workflows: %w", err)
	}

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	for _, workflow := range workflows {
		if _, parseErr := cron.ParseStandard(workflow.Schedule); parseErr != nil {
			s.logger.ErrorContext(ctx, "Skipping workflow with invalid cron spec",
				"workflow_id", workflow.ID, "schedule", workflow.Schedule, "error", parseErr)

			continue
		}

		definition := workflow

		entryID, addErr := s.cron.AddFunc(definition.Schedule, func() {
			s.tick(ctx, definition)
		})
		if addErr != nil {
			return fmt.Errorf("failed to schedule workflow %s: %w", definition.ID, addErr)
		}

		s.logger.InfoContext(ctx, "Scheduled workflow",
			"workflow_id", definition.ID, "schedule", definition.Schedule, "entry_id", entryID)
	}

	s.cron.Start()

	return nil
}

func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping schedule source")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	return nil
}

func (s *Source) tick(ctx context.Context, definition *models.WorkflowDefinition) {
	execution := &models.Execution{
		WorkflowID: definition.ID,
		TenantID:   definition.TenantID,
		TriggerData: map[string]any{
			"source":    "schedule",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	err := s.persistence.Executions().Create(ctx, execution)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create scheduled execution",
			"workflow_id", definition.ID, "error", err)

		return
	}

	event := events.ExecutionRequested{
		BaseEvent:   events.NewBaseEvent(events.ExecutionRequestedEvent, definition.ID, definition.TenantID),
		ExecutionID: execution.ID,
		TriggerData: execution.TriggerData,
	}

	err = s.publisher.Publish(ctx, execution.ID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish execution requested event",
			"execution_id", execution.ID, "error", err)
	}
}
