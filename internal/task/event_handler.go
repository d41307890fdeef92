package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/events"
)

// TaskFactory creates a concrete task for the entity the event refers to.
type TaskFactory interface {
	CreateTask(entityID uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It maps task request events to the factory registered for their type,
// creates the task, and submits it to the runner. Services emit events
// instead of touching this package, which keeps the dependency arrow
// pointing one way.
type TaskFactoryEventHandler struct {
	factories map[string]TaskFactory
	runner    TaskSubmitter
	logger    *slog.Logger
}

// NewTaskFactoryEventHandler creates an event handler that submits tasks
// built by the registered factories to the provided runner.
func NewTaskFactoryEventHandler(runner TaskSubmitter, logger *slog.Logger) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factories: make(map[string]TaskFactory),
		runner:    runner,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// RegisterFactory binds a task type to the factory that builds its tasks,
// replacing any previous registration.
func (h *TaskFactoryEventHandler) RegisterFactory(taskType string, factory TaskFactory) {
	h.factories[taskType] = factory
}

// HandleEvent processes a task request event by creating and submitting
// the matching task. Events without a registered factory are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	factory, ok := h.factories[event.Type]
	if !ok {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		EntityID string `json:"entity_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	entityID, err := uuid.Parse(payload.EntityID)
	if err != nil {
		h.logger.Error("invalid entity ID in payload",
			"error", err,
			"entity_id", payload.EntityID,
			"event_id", event.ID)
		return fmt.Errorf("invalid entity ID: %w", err)
	}

	t, err := factory.CreateTask(entityID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"entity_id", entityID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", t.ID(),
			"entity_id", entityID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", t.ID(),
		"task_type", event.Type,
		"entity_id", entityID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
