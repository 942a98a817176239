package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence/memory"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/testutil"
)

type schedulerHarness struct {
	scheduler *Scheduler
	persist   *memory.Persistence
	tasks     *testutil.FakeTaskStore
	webhooks  *testutil.FakeWebhookClient
	slept     []time.Duration
}

func newSchedulerHarness(t *testing.T) *schedulerHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persist := memory.NewPersistence()
	collaborators, _, tasks, _, webhooks, _ := testutil.NewCollaborators()

	h := &schedulerHarness{
		persist:  persist,
		tasks:    tasks,
		webhooks: webhooks,
	}

	h.scheduler = NewScheduler(logger, newTestRegistry(), collaborators, NewStepRecorder(persist.Steps(), logger), nil)
	h.scheduler.sleep = func(_ context.Context, d time.Duration) error {
		h.slept = append(h.slept, d)

		return nil
	}

	return h
}

func execContext() *models.ExecutionContext {
	return &models.ExecutionContext{
		ExecutionID: "exec-1",
		TenantID:    "tenant-1",
		Variables:   map[string]any{},
	}
}

func TestSchedulerDiamondJoinExecutesOnce(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness(t)

	// T1 fans out to B1 and B2, both converge on J1.
	definition := testutil.NewWorkflow("wf-diamond").
		WithNode("T1", models.NodeTypeTrigger, nil).
		WithNode("B1", models.NodeTypeAction, testutil.ActionData("create_task", map[string]any{"title": "left"})).
		WithNode("B2", models.NodeTypeAction, testutil.ActionData("create_task", map[string]any{"title": "right"})).
		WithNode("J1", models.NodeTypeAction, testutil.ActionData("create_task", map[string]any{"title": "join"})).
		WithEdge("T1", "B1").
		WithEdge("T1", "B2").
		WithEdge("B1", "J1").
		WithEdge("B2", "J1").
		Build()

	executed, err := h.scheduler.Run(context.Background(), definition, execContext())
	require.NoError(t, err)
	assert.Equal(t, 4, executed)

	steps, err := h.persist.Steps().ListByExecution(context.Background(), "exec-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "B1", "B2", "J1"}, stepNodeIDs(steps))
}

func TestSchedulerMergeOrderIsAscendingNodeID(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness(t)

	// Both start nodes write task_id; the higher node id merges last.
	definition := testutil.NewWorkflow("wf-merge").
		WithNode("B2", models.NodeTypeAction, testutil.ActionData("create_task", map[string]any{"title": "second"})).
		WithNode("B1", models.NodeTypeAction, testutil.ActionData("create_task", map[string]any{"title": "first"})).
		Build()

	execCtx := execContext()

	_, err := h.scheduler.Run(context.Background(), definition, execCtx)
	require.NoError(t, err)

	require.Len(t, h.tasks.Created, 2)
	assert.Equal(t, "first", h.tasks.Created[0].Title)
	assert.Equal(t, "second", h.tasks.Created[1].Title)
	assert.Equal(t, "task-2", execCtx.Variables["task_id"])
}

func TestSchedulerRetriesWithBackoff(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness(t)
	h.webhooks.Err = errors.New("upstream unavailable")

	definition := testutil.NewWorkflow("wf-retry").
		WithNode("W1", models.NodeTypeAction, map[string]any{
			"action":      "webhook",
			"config":      map[string]any{"url": "https://hooks.example.com"},
			"max_retries": 2,
		}).
		Build()

	_, err := h.scheduler.Run(context.Background(), definition, execContext())
	require.Error(t, err)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, h.slept)

	steps, listErr := h.persist.Steps().ListByExecution(context.Background(), "exec-1")
	require.NoError(t, listErr)
	require.Len(t, steps, 1)
	assert.Equal(t, models.StepStatusFailed, steps[0].Status)
	assert.Equal(t, 2, steps[0].RetryCount)
}

func TestSchedulerRetrySucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness(t)

	flaky := &flakyWebhook{failures: 1}
	h.scheduler.collaborators.Webhooks = flaky

	definition := testutil.NewWorkflow("wf-retry-ok").
		WithNode("W1", models.NodeTypeAction, map[string]any{
			"action":      "webhook",
			"config":      map[string]any{"url": "https://hooks.example.com"},
			"max_retries": 3,
		}).
		Build()

	execCtx := execContext()

	executed, err := h.scheduler.Run(context.Background(), definition, execCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, []time.Duration{time.Second}, h.slept)

	steps, listErr := h.persist.Steps().ListByExecution(context.Background(), "exec-1")
	require.NoError(t, listErr)
	require.Len(t, steps, 1)
	assert.Equal(t, models.StepStatusCompleted, steps[0].Status)
	assert.Equal(t, 1, steps[0].RetryCount)
}

func TestSchedulerNoRetryByDefault(t *testing.T) {
	t.Parallel()

	h := newSchedulerHarness(t)
	h.webhooks.Err = errors.New("upstream unavailable")

	definition := testutil.NewWorkflow("wf-no-retry").
		WithNode("W1", models.NodeTypeAction, testutil.ActionData("webhook", map[string]any{
			"url": "https://hooks.example.com",
		})).
		Build()

	_, err := h.scheduler.Run(context.Background(), definition, execContext())
	require.Error(t, err)
	assert.Empty(t, h.slept)
}

func TestBackoffDelayCapped(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, backoffDelay(1))
	assert.Equal(t, 4*time.Second, backoffDelay(3))
	assert.Equal(t, retryMaxDelay, backoffDelay(10))
}

type flakyWebhook struct {
	calls    int
	failures int
}

func (f *flakyWebhook) Post(_ context.Context, _ string, _ map[string]any, _ map[string]string) (*protocol.WebhookResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("temporarily unavailable")
	}

	return &protocol.WebhookResponse{StatusCode: 200, Body: map[string]any{"ok": true}}, nil
}
