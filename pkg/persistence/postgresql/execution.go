package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/flowd-sh/flowd/pkg/persistence"
	"github.com/google/uuid"
)

// ExecutionRepository handles execution database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}

	if execution.Status == "" {
		execution.Status = models.ExecutionStatusRunning
	}

	if execution.StartedAt.IsZero() {
		execution.StartedAt = time.Now().UTC()
	}

	triggerData, err := json.Marshal(execution.TriggerData)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	query := `
		INSERT INTO executions (id, workflow_id, tenant_id, status, trigger_data, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID, execution.WorkflowID, execution.TenantID,
		execution.Status, triggerData, execution.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, tenantID, id string) (*models.Execution, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , tenant_id
		  , status
		  , trigger_data
		  , started_at
		  , completed_at
		  , duration_ms
		  , error_message
		FROM executions
		WHERE id = $1 AND tenant_id = $2
	`

	var (
		execution   models.Execution
		triggerData []byte
	)

	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&execution.ID, &execution.WorkflowID, &execution.TenantID,
		&execution.Status, &triggerData, &execution.StartedAt,
		&execution.CompletedAt, &execution.DurationMS, &execution.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	if err := json.Unmarshal(triggerData, &execution.TriggerData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
	}

	return &execution, nil
}

// Claim marks the execution as owned by this supervisor. The conditional
// update guarantees a single writer even when the same execution id is
// submitted twice concurrently.
func (r *ExecutionRepository) Claim(ctx context.Context, tenantID, id string) error {
	query := `
		UPDATE executions SET claimed_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND status = $3 AND claimed_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, tenantID, models.ExecutionStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to claim execution %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrExecutionAlreadyClaimed
	}

	return nil
}

// Finish writes the terminal status. The status guard keeps terminal states
// write-once: a finished execution is never overwritten.
func (r *ExecutionRepository) Finish(ctx context.Context, tenantID, id string, status models.ExecutionStatus, completedAt time.Time, durationMS int64, errorMessage string) error {
	query := `
		UPDATE executions
		SET status = $1, completed_at = $2, duration_ms = $3, error_message = $4
		WHERE id = $5 AND tenant_id = $6 AND status = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		status, completedAt, durationMS, errorMessage,
		id, tenantID, models.ExecutionStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to finish execution %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.ErrExecutionFinished
	}

	return nil
}
