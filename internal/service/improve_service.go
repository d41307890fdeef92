package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/events"
	"github.com/fastlesson/fastlesson-api/internal/store"
	"github.com/fastlesson/fastlesson-api/internal/task"
)

// ImproveService provides section improvement operations. GetJob, SaveJob,
// GetSection and ApplyImprovedContent form the persistence surface the
// background improvement task works against.
type ImproveService interface {
	// CreateImproveJobAndEnqueueTask creates a pending improvement job for
	// a section and emits an event that enqueues the rewrite task.
	CreateImproveJobAndEnqueueTask(
		ctx context.Context,
		sectionID uuid.UUID,
		mode domain.ImproveMode,
	) (*domain.ImproveJob, error)

	// GetJob retrieves an improve job by its ID
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ImproveJob, error)

	// SaveJob persists the current status and result of an improve job
	SaveJob(ctx context.Context, job *domain.ImproveJob) error

	// GetSection retrieves a section by its ID
	GetSection(ctx context.Context, sectionID uuid.UUID) (*domain.Section, error)

	// ApplyImprovedContent replaces the section's content and persists the
	// finished job in a single transaction
	ApplyImprovedContent(ctx context.Context, sectionID uuid.UUID, job *domain.ImproveJob, content string) error
}

// Ensure ImproveService covers the improvement task's persistence needs
var _ task.SectionImproveService = (ImproveService)(nil)

// ImproveServiceError wraps errors from the improve service with context.
type ImproveServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ImproveServiceError.
func (e *ImproveServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("improve service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("improve service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ImproveServiceError) Unwrap() error {
	return e.Err
}

// NewImproveServiceError creates a new ImproveServiceError. Expected
// conditions are returned directly without wrapping.
func NewImproveServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if isExpectedError(err) {
		return err
	}

	return &ImproveServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// improveService implements the ImproveService interface
type improveService struct {
	jobs         store.ImproveJobStore
	sections     store.SectionStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
	runTx        func(ctx context.Context, fn store.TxFn) error
}

// NewImproveService creates a new ImproveService backed by db.
// It returns an error if any of the required dependencies are nil.
func NewImproveService(
	db *sql.DB,
	jobs store.ImproveJobStore,
	sections store.SectionStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (ImproveService, error) {
	switch {
	case db == nil:
		return nil, &ImproveServiceError{Operation: "create_service", Message: "db cannot be nil"}
	case jobs == nil:
		return nil, &ImproveServiceError{Operation: "create_service", Message: "jobs store cannot be nil"}
	case sections == nil:
		return nil, &ImproveServiceError{Operation: "create_service", Message: "sections store cannot be nil"}
	case eventEmitter == nil:
		return nil, &ImproveServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &improveService{
		jobs:         jobs,
		sections:     sections,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "improve_service"),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// CreateImproveJobAndEnqueueTask implements ImproveService.CreateImproveJobAndEnqueueTask
func (s *improveService) CreateImproveJobAndEnqueueTask(
	ctx context.Context,
	sectionID uuid.UUID,
	mode domain.ImproveMode,
) (*domain.ImproveJob, error) {
	// Reject requests for sections that do not exist before creating any
	// state.
	if _, err := s.sections.GetByID(ctx, sectionID); err != nil {
		return nil, NewImproveServiceError("create_job", "failed to retrieve section", err)
	}

	job, err := domain.NewImproveJob(sectionID, mode)
	if err != nil {
		s.logger.Warn("invalid improve request",
			"error", err,
			"section_id", sectionID)
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, NewImproveServiceError("create_job", "failed to save job", err)
	}

	s.logger.Info("improve job created",
		"job_id", job.ID,
		"section_id", sectionID,
		"mode", string(mode))

	event, err := events.NewEntityTaskRequestEvent(task.TaskTypeSectionImprove, job.ID)
	if err != nil {
		return nil, NewImproveServiceError("create_job", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit section improve event",
			"error", err,
			"job_id", job.ID,
			"event_id", event.ID)
		return nil, NewImproveServiceError("create_job", "failed to emit event", err)
	}

	return job, nil
}

// GetJob implements ImproveService.GetJob
func (s *improveService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ImproveJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewImproveServiceError("get_job", "failed to retrieve job", err)
	}
	return job, nil
}

// SaveJob implements ImproveService.SaveJob
func (s *improveService) SaveJob(ctx context.Context, job *domain.ImproveJob) error {
	if err := s.jobs.Update(ctx, job); err != nil {
		return NewImproveServiceError("save_job", "failed to update job", err)
	}
	return nil
}

// GetSection implements ImproveService.GetSection
func (s *improveService) GetSection(ctx context.Context, sectionID uuid.UUID) (*domain.Section, error) {
	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		return nil, NewImproveServiceError("get_section", "failed to retrieve section", err)
	}
	return section, nil
}

// ApplyImprovedContent implements ImproveService.ApplyImprovedContent
func (s *improveService) ApplyImprovedContent(
	ctx context.Context,
	sectionID uuid.UUID,
	job *domain.ImproveJob,
	content string,
) error {
	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.sections.WithTx(tx).UpdateContent(ctx, sectionID, content); err != nil {
			return NewImproveServiceError("apply_content", "failed to update section content", err)
		}

		if err := s.jobs.WithTx(tx).Update(ctx, job); err != nil {
			return NewImproveServiceError("apply_content", "failed to update job", err)
		}

		return nil
	})
}
