package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTaskStore is a configurable TaskStore implementation for tests.
// Each method delegates to the matching Fn field when set and records the
// tasks it has seen.
type MockTaskStore struct {
	mu sync.Mutex

	SaveTaskFn          func(ctx context.Context, task Task) error
	UpdateTaskStatusFn  func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
	GetPendingTasksFn   func(ctx context.Context) ([]Task, error)
	GetProcessingTasksFn func(ctx context.Context, olderThan time.Duration) ([]Task, error)

	SavedTasks    []Task
	StatusUpdates map[uuid.UUID][]TaskStatus
}

// NewMockTaskStore creates a MockTaskStore with empty recording state.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		StatusUpdates: make(map[uuid.UUID][]TaskStatus),
	}
}

// SaveTask implements TaskStore.SaveTask
func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mu.Lock()
	s.SavedTasks = append(s.SavedTasks, task)
	s.mu.Unlock()

	if s.SaveTaskFn != nil {
		return s.SaveTaskFn(ctx, task)
	}
	return nil
}

// UpdateTaskStatus implements TaskStore.UpdateTaskStatus
func (s *MockTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	s.StatusUpdates[taskID] = append(s.StatusUpdates[taskID], status)
	s.mu.Unlock()

	if s.UpdateTaskStatusFn != nil {
		return s.UpdateTaskStatusFn(ctx, taskID, status, errorMsg)
	}
	return nil
}

// GetPendingTasks implements TaskStore.GetPendingTasks
func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	if s.GetPendingTasksFn != nil {
		return s.GetPendingTasksFn(ctx)
	}
	return nil, nil
}

// GetProcessingTasks implements TaskStore.GetProcessingTasks
func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	if s.GetProcessingTasksFn != nil {
		return s.GetProcessingTasksFn(ctx, olderThan)
	}
	return nil, nil
}

// WithTx implements TaskStore.WithTx
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

// LastStatus returns the most recent status recorded for a task, or the
// empty status when none was recorded.
func (s *MockTaskStore) LastStatus(taskID uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	updates := s.StatusUpdates[taskID]
	if len(updates) == 0 {
		return ""
	}
	return updates[len(updates)-1]
}

// Ensure MockTaskStore implements TaskStore
var _ TaskStore = (*MockTaskStore)(nil)
