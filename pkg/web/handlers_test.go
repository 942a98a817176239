package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowd-sh/flowd/pkg/engine"
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence/memory"
	"github.com/flowd-sh/flowd/pkg/registry"
	"github.com/flowd-sh/flowd/pkg/testutil"
	"github.com/flowd-sh/flowd/pkg/web"
)

type apiHarness struct {
	app     *fiber.App
	persist *memory.Persistence
	tasks   *testutil.FakeTaskStore
}

func setupTestApp(t *testing.T) *apiHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persist := memory.NewPersistence()

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes()

	collaborators, _, tasks, _, _, _ := testutil.NewCollaborators()
	supervisor := engine.NewSupervisor(logger, persist, reg, collaborators, nil)

	handlers := web.NewAPIHandlers(logger, persist, supervisor, reg, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	web.RegisterRoutes(app, handlers)

	return &apiHarness{app: app, persist: persist, tasks: tasks}
}

func (h *apiHarness) request(t *testing.T, method, path, tenantID string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if tenantID != "" {
		req.Header.Set(web.TenantHeader, tenantID)
	}

	resp, err := h.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out))

	return out
}

func scoreWorkflowRequest() web.CreateWorkflowRequest {
	return web.CreateWorkflowRequest{
		Name: "lead scoring",
		Nodes: []*models.Node{
			{ID: "T1", Type: models.NodeTypeTrigger, Name: "trigger"},
			{ID: "A1", Type: models.NodeTypeAction, Name: "notify", Data: testutil.ActionData("send_email", map[string]any{
				"to": "ops@example.com", "subject": "score", "body": "score {{score}}",
			})},
			{ID: "A2", Type: models.NodeTypeAction, Name: "follow up", Data: testutil.ActionData("create_task", map[string]any{
				"title": "follow up",
			})},
		},
		Edges: []*models.Edge{
			{ID: "T1->A1", Source: "T1", Target: "A1"},
			{ID: "A1->A2", Source: "A1", Target: "A2", Condition: "{{score}} > 50"},
		},
	}
}

func TestCreateWorkflow(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	resp := h.request(t, http.MethodPost, "/v1/workflows", "tenant-1", scoreWorkflowRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeJSON[models.WorkflowDefinition](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "tenant-1", created.TenantID)
	assert.Len(t, created.Nodes, 3)
}

func TestCreateWorkflowRequiresTenantHeader(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	resp := h.request(t, http.MethodPost, "/v1/workflows", "", scoreWorkflowRequest())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflowRejectsShortName(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	req := scoreWorkflowRequest()
	req.Name = "ab"

	resp := h.request(t, http.MethodPost, "/v1/workflows", "tenant-1", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflowRejectsDanglingEdge(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	req := scoreWorkflowRequest()
	req.Edges = append(req.Edges, &models.Edge{ID: "bad", Source: "A2", Target: "ghost"})

	resp := h.request(t, http.MethodPost, "/v1/workflows", "tenant-1", req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetWorkflowTenantIsolation(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	resp := h.request(t, http.MethodPost, "/v1/workflows", "tenant-1", scoreWorkflowRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeJSON[models.WorkflowDefinition](t, resp)

	resp = h.request(t, http.MethodGet, "/v1/workflows/"+created.ID, "tenant-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.request(t, http.MethodGet, "/v1/workflows/"+created.ID, "tenant-2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTriggerExecutionRunsToCompletion(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	resp := h.request(t, http.MethodPost, "/v1/workflows", "tenant-1", scoreWorkflowRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeJSON[models.WorkflowDefinition](t, resp)

	resp = h.request(t, http.MethodPost, "/v1/workflows/"+created.ID+"/executions", "tenant-1",
		web.TriggerExecutionRequest{TriggerData: map[string]any{"score": 70}})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	started := decodeJSON[web.ExecutionStartedResponse](t, resp)
	assert.NotEmpty(t, started.ExecutionID)
	assert.Equal(t, "running", started.Status)

	require.Eventually(t, func() bool {
		resp := h.request(t, http.MethodGet, "/v1/executions/"+started.ExecutionID, "tenant-1", nil)
		if resp.StatusCode != http.StatusOK {
			return false
		}

		execution := decodeJSON[models.Execution](t, resp)

		return execution.Status == models.ExecutionStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	resp = h.request(t, http.MethodGet, "/v1/executions/"+started.ExecutionID+"/steps", "tenant-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	steps := decodeJSON[struct {
		Steps []*models.ExecutionStep `json:"steps"`
	}](t, resp)
	require.Len(t, steps.Steps, 3)
	assert.Equal(t, "T1", steps.Steps[0].NodeID)
	assert.Equal(t, "A2", steps.Steps[2].NodeID)

	assert.Len(t, h.tasks.Created, 1)
}

func TestTriggerExecutionUnknownWorkflow(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	resp := h.request(t, http.MethodPost, "/v1/workflows/ghost/executions", "tenant-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetExecutionNotFound(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	resp := h.request(t, http.MethodGet, "/v1/executions/ghost", "tenant-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	h := setupTestApp(t)

	resp := h.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
