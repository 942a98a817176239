// Package web provides HTTP handlers for the trigger boundary: starting
// executions and polling their state.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowd-sh/flowd/pkg/engine"
	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/flowd-sh/flowd/pkg/registry"
)

// TenantHeader carries the calling tenant. Authentication happens upstream;
// the API trusts the header.
const TenantHeader = "X-Tenant-ID"

type APIHandlers struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	supervisor  *engine.Supervisor
	registry    *registry.Registry
	validator   *validator.Validate
}

func NewAPIHandlers(
	logger *slog.Logger,
	persist persistence.Persistence,
	supervisor *engine.Supervisor,
	reg *registry.Registry,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		logger:      logger,
		persistence: persist,
		supervisor:  supervisor,
		registry:    reg,
		validator:   validate,
	}
}

// RegisterRoutes mounts all API routes on the app.
func RegisterRoutes(app *fiber.App, h *APIHandlers) {
	app.Get("/health", h.HealthCheck)

	v1 := app.Group("/v1")
	v1.Post("/workflows", h.CreateWorkflow)
	v1.Get("/workflows", h.ListWorkflows)
	v1.Get("/workflows/:id", h.GetWorkflow)
	v1.Delete("/workflows/:id", h.DeleteWorkflow)
	v1.Post("/workflows/:id/executions", h.TriggerExecution)
	v1.Get("/executions/:id", h.GetExecution)
	v1.Get("/executions/:id/steps", h.GetExecutionSteps)
}

func (h *APIHandlers) tenantID(c fiber.Ctx) string {
	return c.Get(TenantHeader)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	tenantID := h.tenantID(c)
	if tenantID == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.WorkflowDefinition{
		TenantID:  tenantID,
		Name:      req.Name,
		Nodes:     req.Nodes,
		Edges:     req.Edges,
		Variables: req.Variables,
		Schedule:  req.Schedule,
	}

	if workflow.Nodes == nil {
		workflow.Nodes = []*models.Node{}
	}

	if workflow.Edges == nil {
		workflow.Edges = []*models.Edge{}
	}

	// Definition errors surface at store time, never mid-run.
	if err := engine.ValidateDefinition(workflow, h.registry); err != nil {
		return handleError(c, err)
	}

	if err := h.persistence.Workflows().Save(c.Context(), workflow); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	tenantID := h.tenantID(c)
	if tenantID == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	workflows, err := h.persistence.Workflows().List(c.Context(), tenantID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	tenantID := h.tenantID(c)
	if tenantID == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	workflow, err := h.persistence.Workflows().GetByID(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	tenantID := h.tenantID(c)
	if tenantID == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	err := h.persistence.Workflows().Delete(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TriggerExecution creates the execution row and runs the supervisor in the
// background, answering immediately. Callers poll GetExecution to observe the
// outcome.
func (h *APIHandlers) TriggerExecution(c fiber.Ctx) error {
	tenantID := h.tenantID(c)
	if tenantID == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	workflowID := c.Params("id")

	var req TriggerExecutionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	workflow, err := h.persistence.Workflows().GetByID(c.Context(), tenantID, workflowID)
	if err != nil {
		return handleError(c, err)
	}

	if err := engine.ValidateDefinition(workflow, h.registry); err != nil {
		return handleError(c, err)
	}

	execution := &models.Execution{
		WorkflowID:  workflow.ID,
		TenantID:    tenantID,
		Status:      models.ExecutionStatusRunning,
		TriggerData: req.TriggerData,
	}

	if err := h.persistence.Executions().Create(c.Context(), execution); err != nil {
		return internalError(c, err)
	}

	runCtx := context.WithoutCancel(c.Context())

	go func() {
		if runErr := h.supervisor.ExecuteWorkflow(runCtx, execution.ID, tenantID); runErr != nil {
			h.logger.ErrorContext(runCtx, "Workflow execution failed",
				"execution_id", execution.ID, "error", runErr)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(ExecutionStartedResponse{
		ExecutionID: execution.ID,
		Status:      string(models.ExecutionStatusRunning),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	tenantID := h.tenantID(c)
	if tenantID == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	execution, err := h.persistence.Executions().GetByID(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetExecutionSteps(c fiber.Ctx) error {
	tenantID := h.tenantID(c)
	if tenantID == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	executionID := c.Params("id")

	// Tenant scoping happens on the execution lookup; steps are keyed by
	// execution id only.
	if _, err := h.persistence.Executions().GetByID(c.Context(), tenantID, executionID); err != nil {
		return handleError(c, err)
	}

	steps, err := h.persistence.Steps().ListByExecution(c.Context(), executionID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"steps": steps})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())

	status := "healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}
