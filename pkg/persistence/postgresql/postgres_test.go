package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/flowd-sh/flowd/pkg/persistence/postgresql"
	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/flowd-sh/flowd/pkg/testutil"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"execution_steps", "executions", "tasks", "contacts", "leads", "projects", "workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("flowd_test"),
			postgres.WithUsername("flowd"),
			postgres.WithPassword("flowd"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	persist, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = persist.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return persist, ctx, databaseURL
}

func savedWorkflow(ctx context.Context, t *testing.T, p *postgresql.Persistence) *models.WorkflowDefinition {
	t.Helper()

	definition := testutil.NewWorkflow(uuid.New().String()).
		WithNode("T1", models.NodeTypeTrigger, nil).
		WithNode("A1", models.NodeTypeAction, testutil.ActionData("send_email", map[string]any{
			"to":      "ops@example.com",
			"subject": "hello",
			"body":    "world",
		})).
		WithEdge("T1", "A1").
		WithVariable("region", "eu-west-1").
		Build()

	require.NoError(t, p.Workflows().Save(ctx, definition))

	return definition
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'workflows')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "workflows table should exist")

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'execution_steps')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "execution_steps table should exist")

	var versions int

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&versions)
	require.NoError(t, err)
	assert.Equal(t, 5, versions)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestNewPersistence_SaveAndRetrieveWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	definition := savedWorkflow(ctx, t, p)

	retrieved, err := p.Workflows().GetByID(ctx, definition.TenantID, definition.ID)
	require.NoError(t, err)

	assert.Equal(t, definition.ID, retrieved.ID)
	assert.Equal(t, definition.Name, retrieved.Name)
	assert.Len(t, retrieved.Nodes, 2)
	assert.Len(t, retrieved.Edges, 1)
	assert.Equal(t, "eu-west-1", retrieved.Variables["region"])

	// Another tenant must not see it.
	_, err = p.Workflows().GetByID(ctx, "tenant-2", definition.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestNewPersistence_UpdateWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	definition := savedWorkflow(ctx, t, p)
	initialUpdatedAt := definition.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	definition.Name = "renamed workflow"
	definition.Schedule = "0 3 * * *"
	require.NoError(t, p.Workflows().Save(ctx, definition))

	retrieved, err := p.Workflows().GetByID(ctx, definition.TenantID, definition.ID)
	require.NoError(t, err)

	assert.Equal(t, "renamed workflow", retrieved.Name)
	assert.Equal(t, "0 3 * * *", retrieved.Schedule)
	assert.True(t, retrieved.UpdatedAt.After(initialUpdatedAt))
}

func TestNewPersistence_ListScheduled(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	plain := savedWorkflow(ctx, t, p)

	scheduled := savedWorkflow(ctx, t, p)
	scheduled.Schedule = "*/5 * * * *"
	require.NoError(t, p.Workflows().Save(ctx, scheduled))

	listed, err := p.Workflows().ListScheduled(ctx)
	require.NoError(t, err)

	require.Len(t, listed, 1)
	assert.Equal(t, scheduled.ID, listed[0].ID)
	assert.NotEqual(t, plain.ID, listed[0].ID)
}

func TestNewPersistence_DeleteWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	definition := savedWorkflow(ctx, t, p)

	require.NoError(t, p.Workflows().Delete(ctx, definition.TenantID, definition.ID))

	_, err := p.Workflows().GetByID(ctx, definition.TenantID, definition.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	err = p.Workflows().Delete(ctx, definition.TenantID, definition.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestNewPersistence_ExecutionLifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	definition := savedWorkflow(ctx, t, p)

	execution := &models.Execution{
		WorkflowID:  definition.ID,
		TenantID:    definition.TenantID,
		TriggerData: map[string]any{"score": 70},
	}
	require.NoError(t, p.Executions().Create(ctx, execution))
	require.NotEmpty(t, execution.ID)

	retrieved, err := p.Executions().GetByID(ctx, definition.TenantID, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, retrieved.Status)
	assert.Equal(t, float64(70), retrieved.TriggerData["score"])

	// Only the first claim wins.
	require.NoError(t, p.Executions().Claim(ctx, definition.TenantID, execution.ID))
	err = p.Executions().Claim(ctx, definition.TenantID, execution.ID)
	require.ErrorIs(t, err, persistence.ErrExecutionAlreadyClaimed)

	completedAt := time.Now().UTC()
	require.NoError(t, p.Executions().Finish(ctx, definition.TenantID, execution.ID,
		models.ExecutionStatusCompleted, completedAt, 1200, ""))

	finished, err := p.Executions().GetByID(ctx, definition.TenantID, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, finished.Status)
	require.NotNil(t, finished.DurationMS)
	assert.Equal(t, int64(1200), *finished.DurationMS)

	// Terminal status is write-once.
	err = p.Executions().Finish(ctx, definition.TenantID, execution.ID,
		models.ExecutionStatusFailed, time.Now().UTC(), 0, "late failure")
	require.ErrorIs(t, err, persistence.ErrExecutionFinished)

	_, err = p.Executions().GetByID(ctx, definition.TenantID, uuid.NewString())
	require.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}

func TestNewPersistence_StepLifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	definition := savedWorkflow(ctx, t, p)

	execution := &models.Execution{WorkflowID: definition.ID, TenantID: definition.TenantID}
	require.NoError(t, p.Executions().Create(ctx, execution))

	step := &models.ExecutionStep{
		ExecutionID: execution.ID,
		NodeID:      "A1",
		NodeType:    models.NodeTypeAction,
		Status:      models.StepStatusRunning,
		InputData:   map[string]any{"score": 70},
		StartedAt:   time.Now().UTC(),
	}
	require.NoError(t, p.Steps().Insert(ctx, step))

	completedAt := step.StartedAt.Add(150 * time.Millisecond)
	durationMS := int64(150)
	step.Status = models.StepStatusCompleted
	step.OutputData = map[string]any{"sent": true}
	step.CompletedAt = &completedAt
	step.DurationMS = &durationMS
	require.NoError(t, p.Steps().Update(ctx, step))

	steps, err := p.Steps().ListByExecution(ctx, execution.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)

	assert.Equal(t, models.StepStatusCompleted, steps[0].Status)
	assert.Equal(t, float64(70), steps[0].InputData["score"])
	assert.Equal(t, true, steps[0].OutputData["sent"])
	require.NotNil(t, steps[0].DurationMS)
	assert.Equal(t, int64(150), *steps[0].DurationMS)
}

func TestTaskStore_CreateTask(t *testing.T) {
	p, ctx, databaseURL := setupTestDB(t)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := postgresql.NewTaskStore(p.DB(), logger)

	taskID, err := store.CreateTask(ctx, "tenant-1", protocol.TaskInput{
		Title:       "follow up",
		Description: "call the lead back",
		AssignedTo:  "sales@example.com",
		Priority:    "high",
	})
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	var title string

	err = db.QueryRowContext(ctx, "SELECT title FROM tasks WHERE id = $1 AND tenant_id = $2", taskID, "tenant-1").Scan(&title)
	require.NoError(t, err)
	assert.Equal(t, "follow up", title)
}

func TestRecordStore_UpdateRecord(t *testing.T) {
	p, ctx, databaseURL := setupTestDB(t)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := postgresql.NewRecordStore(p.DB(), logger)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	contactID := uuid.New().String()
	_, err = db.ExecContext(ctx,
		"INSERT INTO contacts (id, tenant_id, name, status) VALUES ($1, $2, $3, $4)",
		contactID, "tenant-1", "Ada", "new")
	require.NoError(t, err)

	err = store.UpdateRecord(ctx, "tenant-1", "contacts", contactID, map[string]any{
		"status": "qualified",
		"email":  "ada@example.com",
	})
	require.NoError(t, err)

	var status, email string

	err = db.QueryRowContext(ctx, "SELECT status, email FROM contacts WHERE id = $1", contactID).Scan(&status, &email)
	require.NoError(t, err)
	assert.Equal(t, "qualified", status)
	assert.Equal(t, "ada@example.com", email)

	// Updates never cross tenants.
	err = store.UpdateRecord(ctx, "tenant-2", "contacts", contactID, map[string]any{"status": "stolen"})
	require.Error(t, err)

	// Only allow-listed tables are updatable.
	err = store.UpdateRecord(ctx, "tenant-1", "workflows", contactID, map[string]any{"name": "x"})
	require.Error(t, err)
}
