package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowd-sh/flowd/pkg/condition"
	"github.com/flowd-sh/flowd/pkg/eventbus"
	"github.com/flowd-sh/flowd/pkg/events"
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/otelhelper"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/registry"
)

const retryBaseDelay = time.Second
const retryMaxDelay = 30 * time.Second

// Scheduler walks the definition graph frontier by frontier with an explicit
// worklist. Nodes within a frontier are processed sequentially in ascending
// node id order so variable merges are deterministic.
type Scheduler struct {
	registry      *registry.Registry
	collaborators *protocol.Collaborators
	recorder      *StepRecorder
	publisher     eventbus.EventPublisher
	tracer        trace.Tracer
	logger        *slog.Logger
	sleep         func(ctx context.Context, d time.Duration) error
}

func NewScheduler(
	logger *slog.Logger,
	reg *registry.Registry,
	collaborators *protocol.Collaborators,
	recorder *StepRecorder,
	publisher eventbus.EventPublisher,
) *Scheduler {
	return &Scheduler{
		registry:      reg,
		collaborators: collaborators,
		recorder:      recorder,
		publisher:     publisher,
		logger:        logger,
		sleep:         sleepContext,
	}
}

// Run executes the definition until the frontier is empty or a node fails.
// It returns the number of nodes executed; a non-nil error is always a
// *NodeError and the whole run is aborted (fail-fast).
func (s *Scheduler) Run(ctx context.Context, definition *models.WorkflowDefinition, execCtx *models.ExecutionContext) (int, error) {
	visited := make(map[string]bool, len(definition.Nodes))
	frontier := startFrontier(definition)
	executed := 0

	for len(frontier) > 0 {
		processed := make([]*models.Node, 0, len(frontier))

		for _, nodeID := range frontier {
			if visited[nodeID] {
				continue
			}

			visited[nodeID] = true

			node, ok := definition.NodeByID(nodeID)
			if !ok {
				// Validated definitions never reach here; stale frontier
				// entries are skipped rather than aborting the run.
				continue
			}

			output, err := s.executeNode(ctx, definition, execCtx, node)
			if err != nil {
				return executed, &NodeError{NodeID: node.ID, Err: err}
			}

			execCtx.MergeOutput(output)
			executed++

			processed = append(processed, node)
		}

		frontier = s.nextFrontier(definition, execCtx, processed, visited)
	}

	return executed, nil
}

func (s *Scheduler) executeNode(ctx context.Context, definition *models.WorkflowDefinition, execCtx *models.ExecutionContext, node *models.Node) (map[string]any, error) {
	logger := s.logger.With("execution_id", execCtx.ExecutionID, "node_id", node.ID, "node_type", node.Type)
	logger.InfoContext(ctx, "Executing node")

	if s.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, s.tracer, "engine.execute_node",
			attribute.String(otelhelper.ExecutionIDKey, execCtx.ExecutionID),
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
		)
		defer span.End()
	}

	execCtx.CurrentNode = node.ID

	executor, err := s.registry.CreateExecutor(node.Type, s.collaborators)
	if err != nil {
		return nil, err
	}

	step, err := s.recorder.Start(ctx, execCtx, node)
	if err != nil {
		return nil, err
	}

	output, err := s.executeWithRetry(ctx, logger, executor, execCtx, node, step)
	if err != nil {
		otelhelper.SetError(trace.SpanFromContext(ctx), err)

		if failErr := s.recorder.Fail(ctx, step, err); failErr != nil {
			logger.ErrorContext(ctx, "Failed to record step failure", "error", failErr)
		}

		s.publishStepFailed(ctx, definition, execCtx, step, err)

		return nil, err
	}

	err = s.recorder.Complete(ctx, step, output)
	if err != nil {
		return nil, err
	}

	s.publishStepCompleted(ctx, definition, execCtx, step)

	return output, nil
}

// executeWithRetry retries a failing executor up to the node's max_retries
// with exponential backoff. The default is zero retries.
func (s *Scheduler) executeWithRetry(
	ctx context.Context,
	logger *slog.Logger,
	executor protocol.NodeExecutor,
	execCtx *models.ExecutionContext,
	node *models.Node,
	step *models.ExecutionStep,
) (map[string]any, error) {
	maxRetries := node.MaxRetries()
	attempt := 0

	for {
		output, err := executor.Execute(ctx, execCtx, node)
		if err == nil {
			return output, nil
		}

		if attempt >= maxRetries {
			return nil, err
		}

		attempt++
		delay := backoffDelay(attempt)
		nextRetryAt := time.Now().UTC().Add(delay)

		logger.WarnContext(ctx, "Node failed, retrying",
			"error", err, "attempt", attempt, "max_retries", maxRetries, "delay", delay)

		if recErr := s.recorder.Retrying(ctx, step, attempt, nextRetryAt); recErr != nil {
			logger.ErrorContext(ctx, "Failed to record retry", "error", recErr)
		}

		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

// nextFrontier collects targets of satisfied outgoing edges of the processed
// batch. Conditions are evaluated against the post-merge variables; targets
// are deduplicated and already-visited node ids are never revisited.
func (s *Scheduler) nextFrontier(definition *models.WorkflowDefinition, execCtx *models.ExecutionContext, processed []*models.Node, visited map[string]bool) []string {
	next := make([]string, 0)
	queued := make(map[string]bool)

	for _, node := range processed {
		for _, edge := range definition.OutgoingEdges(node.ID) {
			if visited[edge.Target] || queued[edge.Target] {
				continue
			}

			if edge.Condition != "" && !condition.Evaluate(edge.Condition, execCtx.Variables) {
				continue
			}

			queued[edge.Target] = true
			next = append(next, edge.Target)
		}
	}

	sort.Strings(next)

	return next
}

func (s *Scheduler) publishStepCompleted(ctx context.Context, definition *models.WorkflowDefinition, execCtx *models.ExecutionContext, step *models.ExecutionStep) {
	if s.publisher == nil {
		return
	}

	var durationMS int64
	if step.DurationMS != nil {
		durationMS = *step.DurationMS
	}

	event := events.StepCompleted{
		BaseEvent:   events.NewBaseEvent(events.StepCompletedEvent, definition.ID, execCtx.TenantID),
		ExecutionID: execCtx.ExecutionID,
		StepID:      step.ID,
		NodeID:      step.NodeID,
		NodeType:    string(step.NodeType),
		OutputData:  step.OutputData,
		DurationMs:  durationMS,
	}

	err := s.publisher.Publish(ctx, execCtx.ExecutionID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish step completed event", "error", err)
	}
}

func (s *Scheduler) publishStepFailed(ctx context.Context, definition *models.WorkflowDefinition, execCtx *models.ExecutionContext, step *models.ExecutionStep, cause error) {
	if s.publisher == nil {
		return
	}

	event := events.StepFailed{
		BaseEvent:   events.NewBaseEvent(events.StepFailedEvent, definition.ID, execCtx.TenantID),
		ExecutionID: execCtx.ExecutionID,
		StepID:      step.ID,
		NodeID:      step.NodeID,
		NodeType:    string(step.NodeType),
		RetryCount:  step.RetryCount,
		Error:       cause.Error(),
	}

	err := s.publisher.Publish(ctx, execCtx.ExecutionID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish step failed event", "error", err)
	}
}

// startFrontier is the set of nodes with no incoming edge, union with every
// trigger node, sorted ascending by id.
func startFrontier(definition *models.WorkflowDefinition) []string {
	hasIncoming := make(map[string]bool, len(definition.Nodes))
	for _, edge := range definition.Edges {
		hasIncoming[edge.Target] = true
	}

	start := make([]string, 0)

	for _, node := range definition.Nodes {
		if !hasIncoming[node.ID] || node.Type == models.NodeTypeTrigger {
			start = append(start, node.ID)
		}
	}

	sort.Strings(start)

	return start
}

func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}

	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
