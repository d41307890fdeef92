package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/platform/logger"
	"github.com/fastlesson/fastlesson-api/internal/store"
	"github.com/fastlesson/fastlesson-api/internal/task"
)

// PostgresTaskStore implements the task.TaskStore interface using
// PostgreSQL. Tasks loaded back from the database are reconstructed
// through the factories registered for their type, so recovered work
// executes with the same wiring as freshly submitted work.
type PostgresTaskStore struct {
	db        store.DBTX
	logger    *slog.Logger
	factories map[string]task.TaskFactory
}

// NewPostgresTaskStore creates a new PostgresTaskStore. If logger is nil,
// a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:        db,
		logger:    logger.With(slog.String("component", "task_store")),
		factories: make(map[string]task.TaskFactory),
	}
}

// Ensure PostgresTaskStore implements task.TaskStore
var _ task.TaskStore = (*PostgresTaskStore)(nil)

// RegisterFactory binds a task type to the factory used to rebuild its
// tasks during recovery. Register all factories before the runner starts.
func (s *PostgresTaskStore) RegisterFactory(taskType string, factory task.TaskFactory) {
	s.factories[taskType] = factory
}

// SaveTask persists a task to the database.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		t.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task to database: %w", err)
	}

	return nil
}

// UpdateTaskStatus updates the status and error message of a task.
// Updating a task that no longer exists is a no-op.
func (s *PostgresTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no task found with ID to update status",
			slog.String("task_id", taskID.String()))
	}

	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status.
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status, optionally
// limited to those untouched for longer than olderThan.
func (s *PostgresTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *PostgresTaskStore) getTasksByStatus(ctx context.Context, status task.TaskStatus, olderThan time.Duration) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status
		FROM tasks
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []any{status}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status
			FROM tasks
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks by status: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("error closing rows", slog.String("error", closeErr.Error()))
		}
	}()

	var tasks []task.Task
	for rows.Next() {
		t := &recoveredTask{logger: s.logger}

		if err := rows.Scan(&t.id, &t.taskType, &t.payload, &t.status); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		// Factory may be nil for types no longer registered; Execute
		// reports that instead of silently dropping the row.
		t.factory = s.factories[t.taskType]

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// WithTx returns a new store instance that uses the provided transaction,
// sharing the factory registrations.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{
		db:        tx,
		logger:    s.logger,
		factories: s.factories,
	}
}

// recoveredTask implements the task.Task interface for tasks loaded from
// the database. It keeps the stored row's identity so the runner's status
// updates hit the original record, and delegates execution to a concrete
// task rebuilt from the payload by the registered factory.
type recoveredTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   task.TaskStatus
	factory  task.TaskFactory
	logger   *slog.Logger
}

func (t *recoveredTask) ID() uuid.UUID {
	return t.id
}

func (t *recoveredTask) Type() string {
	return t.taskType
}

func (t *recoveredTask) Payload() []byte {
	return t.payload
}

func (t *recoveredTask) Status() task.TaskStatus {
	return t.status
}

// Execute rebuilds the concrete task from the stored payload and runs it.
func (t *recoveredTask) Execute(ctx context.Context) error {
	if t.factory == nil {
		return fmt.Errorf("no factory registered for task type %q", t.taskType)
	}

	entityID, err := entityIDFromPayload(t.payload)
	if err != nil {
		return fmt.Errorf("failed to parse payload of recovered task %s: %w", t.id, err)
	}

	concrete, err := t.factory.CreateTask(entityID)
	if err != nil {
		return fmt.Errorf("failed to rebuild recovered task %s: %w", t.id, err)
	}

	t.logger.Debug("executing recovered task",
		slog.String("task_id", t.id.String()),
		slog.String("task_type", t.taskType))

	return concrete.Execute(ctx)
}

// entityIDFromPayload extracts the entity reference from a stored task
// payload. Each task type serializes exactly one entity ID under its own
// key.
func entityIDFromPayload(payload []byte) (uuid.UUID, error) {
	var p struct {
		LessonID uuid.UUID `json:"lesson_id"`
		JobID    uuid.UUID `json:"job_id"`
	}

	if err := json.Unmarshal(payload, &p); err != nil {
		return uuid.Nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	switch {
	case p.LessonID != uuid.Nil:
		return p.LessonID, nil
	case p.JobID != uuid.Nil:
		return p.JobID, nil
	default:
		return uuid.Nil, errors.New("task payload has no entity reference")
	}
}
