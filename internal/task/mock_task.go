package task

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// MockTask is a configurable Task implementation for tests.
type MockTask struct {
	TaskID    uuid.UUID
	TaskType  string
	ExecuteFn func(ctx context.Context) error

	executions atomic.Int32
}

// NewMockTask creates a MockTask with a fresh ID.
func NewMockTask(taskType string) *MockTask {
	return &MockTask{
		TaskID:   uuid.New(),
		TaskType: taskType,
	}
}

// ID implements Task.ID
func (t *MockTask) ID() uuid.UUID {
	return t.TaskID
}

// Type implements Task.Type
func (t *MockTask) Type() string {
	return t.TaskType
}

// Payload implements Task.Payload
func (t *MockTask) Payload() []byte {
	return []byte("{}")
}

// Status implements Task.Status
func (t *MockTask) Status() TaskStatus {
	return TaskStatusPending
}

// Execute implements Task.Execute
func (t *MockTask) Execute(ctx context.Context) error {
	t.executions.Add(1)
	if t.ExecuteFn != nil {
		return t.ExecuteFn(ctx)
	}
	return nil
}

// Executions returns how many times Execute has been called.
func (t *MockTask) Executions() int {
	return int(t.executions.Load())
}

// Ensure MockTask implements Task
var _ Task = (*MockTask)(nil)
