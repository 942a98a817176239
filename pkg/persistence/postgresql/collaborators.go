package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/flowd-sh/flowd/pkg/protocol"
	"github.com/google/uuid"
)

// updatableTables is the allow-list for the generic update_record action.
// Anything outside it is rejected before a query is built.
var updatableTables = map[string]bool{
	"contacts": true,
	"leads":    true,
	"projects": true,
	"tasks":    true,
}

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// TaskStore persists tasks created by workflow actions.
type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTaskStore(db *sql.DB, logger *slog.Logger) *TaskStore {
	return &TaskStore{db: db, logger: logger}
}

func (s *TaskStore) CreateTask(ctx context.Context, tenantID string, task protocol.TaskInput) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO tasks (id, tenant_id, title, description, assigned_to, due_date, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		id, tenantID, task.Title, task.Description,
		task.AssignedTo, task.DueDate, task.Priority, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}

	return id, nil
}

// RecordStore performs tenant-scoped updates on allow-listed tables.
type RecordStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRecordStore(db *sql.DB, logger *slog.Logger) *RecordStore {
	return &RecordStore{db: db, logger: logger}
}

func (s *RecordStore) UpdateRecord(ctx context.Context, tenantID, table, recordID string, fields map[string]any) error {
	if !updatableTables[table] {
		return fmt.Errorf("table %q is not updatable from workflows", table)
	}

	if len(fields) == 0 {
		return fmt.Errorf("no fields to update on %s record %s", table, recordID)
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !identifierPattern.MatchString(column) {
			return fmt.Errorf("invalid column name %q", column)
		}

		columns = append(columns, column)
	}

	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+2)

	for i, column := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, fields[column])
	}

	args = append(args, recordID, tenantID)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d AND tenant_id = $%d",
		table, strings.Join(assignments, ", "), len(columns)+1, len(columns)+2,
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s record %s: %w", table, recordID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("no %s record %s for tenant %s", table, recordID, tenantID)
	}

	return nil
}
