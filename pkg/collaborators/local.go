package collaborators

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/flowd-sh/flowd/pkg/protocol"
)

// LocalTaskStore keeps tasks in memory. Used when flowd runs without a
// database (memory persistence, local development).
type LocalTaskStore struct {
	mu    sync.Mutex
	tasks map[string]protocol.TaskInput
}

func NewLocalTaskStore() *LocalTaskStore {
	return &LocalTaskStore{tasks: make(map[string]protocol.TaskInput)}
}

func (s *LocalTaskStore) CreateTask(_ context.Context, _ string, task protocol.TaskInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.tasks[id] = task

	return id, nil
}

// LocalRecordStore applies record updates to an in-memory map, keyed by
// table/record id.
type LocalRecordStore struct {
	mu      sync.Mutex
	records map[string]map[string]any
}

func NewLocalRecordStore() *LocalRecordStore {
	return &LocalRecordStore{records: make(map[string]map[string]any)}
}

func (s *LocalRecordStore) UpdateRecord(_ context.Context, tenantID, table, recordID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tenantID + "/" + table + "/" + recordID

	record, ok := s.records[key]
	if !ok {
		record = make(map[string]any)
		s.records[key] = record
	}

	for field, value := range fields {
		record[field] = value
	}

	return nil
}
