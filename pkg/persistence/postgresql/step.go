package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/flowd-sh/flowd/pkg/models"
	"github.com/google/uuid"
)

// StepRepository handles execution step database operations.
type StepRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStepRepository creates a new step repository.
func NewStepRepository(db *sql.DB, logger *slog.Logger) *StepRepository {
	return &StepRepository{db: db, logger: logger}
}

func (r *StepRepository) Insert(ctx context.Context, step *models.ExecutionStep) error {
	if step.ID == "" {
		step.ID = uuid.New().String()
	}

	inputData, err := json.Marshal(step.InputData)
	if err != nil {
		return fmt.Errorf("failed to marshal input data: %w", err)
	}

	query := `
		INSERT INTO execution_steps (id, execution_id, node_id, node_type, status, input_data, started_at, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		step.ID, step.ExecutionID, step.NodeID, step.NodeType,
		step.Status, inputData, step.StartedAt, step.RetryCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert step for node %s: %w", step.NodeID, err)
	}

	return nil
}

func (r *StepRepository) Update(ctx context.Context, step *models.ExecutionStep) error {
	outputData, err := json.Marshal(step.OutputData)
	if err != nil {
		return fmt.Errorf("failed to marshal output data: %w", err)
	}

	query := `
		UPDATE execution_steps
		SET status = $1, output_data = $2, completed_at = $3, duration_ms = $4,
		    error_message = $5, retry_count = $6, next_retry_at = $7
		WHERE id = $8
	`

	_, err = r.db.ExecContext(ctx, query,
		step.Status, outputData, step.CompletedAt, step.DurationMS,
		step.ErrorMessage, step.RetryCount, step.NextRetryAt, step.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update step %s: %w", step.ID, err)
	}

	return nil
}

func (r *StepRepository) ListByExecution(ctx context.Context, executionID string) ([]*models.ExecutionStep, error) {
	query := `
		SELECT
			id
		  , execution_id
		  , node_id
		  , node_type
		  , status
		  , input_data
		  , output_data
		  , started_at
		  , completed_at
		  , duration_ms
		  , error_message
		  , retry_count
		  , next_retry_at
		FROM execution_steps
		WHERE execution_id = $1
		ORDER BY started_at, node_id
	`

	rows, err := r.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	steps := make([]*models.ExecutionStep, 0)

	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		steps = append(steps, step)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating steps: %w", err)
	}

	return steps, nil
}

func scanStep(rows *sql.Rows) (*models.ExecutionStep, error) {
	var (
		step       models.ExecutionStep
		inputData  []byte
		outputData []byte
	)

	err := rows.Scan(
		&step.ID, &step.ExecutionID, &step.NodeID, &step.NodeType,
		&step.Status, &inputData, &outputData, &step.StartedAt,
		&step.CompletedAt, &step.DurationMS, &step.ErrorMessage,
		&step.RetryCount, &step.NextRetryAt,
	)
	if err != nil {
		return nil, err
	}

	if len(inputData) > 0 {
		if err := json.Unmarshal(inputData, &step.InputData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal input data: %w", err)
		}
	}

	if len(outputData) > 0 {
		if err := json.Unmarshal(outputData, &step.OutputData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal output data: %w", err)
		}
	}

	return &step, nil
}
