// Package main provides the flowd worker, which executes workflows requested
// on the event bus and hosts the cron schedule source.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/flowd-sh/flowd/pkg/engine"
	"github.com/flowd-sh/flowd/pkg/eventbus"
	"github.com/flowd-sh/flowd/pkg/events"
	"github.com/flowd-sh/flowd/pkg/lease"
	"github.com/flowd-sh/flowd/pkg/otelhelper"
	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/registry"
	"github.com/flowd-sh/flowd/pkg/sources/schedule"
)

type Worker struct {
	id         string
	logger     *slog.Logger
	supervisor *engine.Supervisor
	eventBus   eventbus.EventBus
	schedule   *schedule.Source
}

func NewWorker(
	ctx context.Context,
	id string,
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	collaborators *protocol.Collaborators,
	eventBus eventbus.EventBus,
	redisURL string,
) (*Worker, error) {
	opts := []engine.SupervisorOption{}

	if redisURL != "" {
		redisOpts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}

		opts = append(opts, engine.WithLease(lease.NewRedisLease(redis.NewClient(redisOpts))))
	}

	tracer, err := otelhelper.NewTracer(ctx, "flowd-worker")
	if err != nil {
		return nil, err
	}

	opts = append(opts, engine.WithTracer(tracer))

	return &Worker{
		id:         id,
		logger:     logger,
		supervisor: engine.NewSupervisor(logger, persist, reg, collaborators, eventBus, opts...),
		eventBus:   eventBus,
		schedule:   schedule.NewSource(logger, persist, eventBus),
	}, nil
}

func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker")

	err := w.eventBus.Handle(events.ExecutionRequestedEvent, w.handleExecutionRequested)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	err = w.schedule.Start(ctx)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return w.schedule.Stop(ctx)
}

func (w *Worker) handleExecutionRequested(ctx context.Context, event any) error {
	requested, ok := event.(*events.ExecutionRequested)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for ExecutionRequested")

		return nil
	}

	logger := w.logger.With(
		"workflow_id", requested.WorkflowID,
		"execution_id", requested.ExecutionID,
		"tenant_id", requested.TenantID,
	)
	logger.InfoContext(ctx, "Processing execution requested event")

	err := w.supervisor.ExecuteWorkflow(ctx, requested.ExecutionID, requested.TenantID)
	if err != nil {
		// Another worker holds the claim. Ack the message instead of
		// retrying into a guaranteed conflict.
		if errors.Is(err, persistence.ErrExecutionAlreadyClaimed) {
			logger.InfoContext(ctx, "Execution already claimed by another worker")

			return nil
		}

		logger.ErrorContext(ctx, "Workflow execution failed", "error", err)
	}

	return nil
}
