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

// LessonService provides lesson-related operations. The first group serves
// the API layer; the Save/Renumber group is the persistence surface the
// background generation task works against.
type LessonService interface {
	// CreateLessonAndEnqueueTask spends one of the creator's generation
	// credits, creates the lesson with a pending progress record, and emits
	// an event that enqueues the generation task. The credit spend and both
	// inserts commit atomically.
	CreateLessonAndEnqueueTask(
		ctx context.Context,
		creatorID uuid.UUID,
		title string,
		subject domain.Subject,
		level domain.Level,
	) (*domain.Lesson, error)

	// GetLesson retrieves a lesson by its ID
	GetLesson(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error)

	// GetProgress retrieves the generation progress of a lesson
	GetProgress(ctx context.Context, lessonID uuid.UUID) (*domain.GenerationProgress, error)

	// GetSections retrieves the sections of a lesson ordered by position
	GetSections(ctx context.Context, lessonID uuid.UUID) ([]*domain.Section, error)

	// SaveProgress persists the current counters and status of a progress
	// record
	SaveProgress(ctx context.Context, progress *domain.GenerationProgress) error

	// SaveSectionWithProgress persists a section and the matching progress
	// update in a single transaction
	SaveSectionWithProgress(ctx context.Context, section *domain.Section, progress *domain.GenerationProgress) error

	// RenumberSections rewrites section positions to a dense 1..N sequence
	RenumberSections(ctx context.Context, lessonID uuid.UUID) error
}

// Ensure LessonService covers the generation task's persistence needs
var _ task.LessonGenerationService = (LessonService)(nil)

// LessonServiceError wraps errors from the lesson service with context.
type LessonServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for LessonServiceError.
func (e *LessonServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lesson service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("lesson service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *LessonServiceError) Unwrap() error {
	return e.Err
}

// NewLessonServiceError creates a new LessonServiceError. Expected
// conditions (sentinel errors the API layer maps to status codes) are
// returned directly without wrapping.
func NewLessonServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if isExpectedError(err) {
		return err
	}

	return &LessonServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// lessonService implements the LessonService interface
type lessonService struct {
	lessons      store.LessonStore
	sections     store.SectionStore
	progress     store.ProgressStore
	users        store.UserStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
	runTx        func(ctx context.Context, fn store.TxFn) error
}

// NewLessonService creates a new LessonService backed by db.
// It returns an error if any of the required dependencies are nil.
func NewLessonService(
	db *sql.DB,
	lessons store.LessonStore,
	sections store.SectionStore,
	progress store.ProgressStore,
	users store.UserStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (LessonService, error) {
	switch {
	case db == nil:
		return nil, &LessonServiceError{Operation: "create_service", Message: "db cannot be nil"}
	case lessons == nil:
		return nil, &LessonServiceError{Operation: "create_service", Message: "lessons store cannot be nil"}
	case sections == nil:
		return nil, &LessonServiceError{Operation: "create_service", Message: "sections store cannot be nil"}
	case progress == nil:
		return nil, &LessonServiceError{Operation: "create_service", Message: "progress store cannot be nil"}
	case users == nil:
		return nil, &LessonServiceError{Operation: "create_service", Message: "users store cannot be nil"}
	case eventEmitter == nil:
		return nil, &LessonServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &lessonService{
		lessons:      lessons,
		sections:     sections,
		progress:     progress,
		users:        users,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "lesson_service"),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// CreateLessonAndEnqueueTask implements LessonService.CreateLessonAndEnqueueTask
func (s *lessonService) CreateLessonAndEnqueueTask(
	ctx context.Context,
	creatorID uuid.UUID,
	title string,
	subject domain.Subject,
	level domain.Level,
) (*domain.Lesson, error) {
	lesson, err := domain.NewLesson(creatorID, title, subject, level)
	if err != nil {
		s.logger.Warn("invalid lesson request",
			"error", err,
			"creator_id", creatorID)
		return nil, err
	}

	progress, err := domain.NewGenerationProgress(lesson.ID)
	if err != nil {
		return nil, NewLessonServiceError("create_lesson", "failed to create progress record", err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).TrySpendGeneration(ctx, creatorID); err != nil {
			return NewLessonServiceError("create_lesson", "failed to spend generation credit", err)
		}

		if err := s.lessons.WithTx(tx).Create(ctx, lesson); err != nil {
			return NewLessonServiceError("create_lesson", "failed to save lesson", err)
		}

		if err := s.progress.WithTx(tx).Create(ctx, progress); err != nil {
			return NewLessonServiceError("create_lesson", "failed to save progress record", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lesson created with pending progress",
		"lesson_id", lesson.ID,
		"creator_id", creatorID)

	event, err := events.NewEntityTaskRequestEvent(task.TaskTypeLessonGeneration, lesson.ID)
	if err != nil {
		return nil, NewLessonServiceError("create_lesson", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit lesson generation event",
			"error", err,
			"lesson_id", lesson.ID,
			"event_id", event.ID)
		return nil, NewLessonServiceError("create_lesson", "failed to emit event", err)
	}

	s.logger.Info("lesson generation event emitted",
		"lesson_id", lesson.ID,
		"event_id", event.ID)

	return lesson, nil
}

// GetLesson implements LessonService.GetLesson
func (s *lessonService) GetLesson(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, NewLessonServiceError("get_lesson", "failed to retrieve lesson", err)
	}
	return lesson, nil
}

// GetProgress implements LessonService.GetProgress
func (s *lessonService) GetProgress(ctx context.Context, lessonID uuid.UUID) (*domain.GenerationProgress, error) {
	progress, err := s.progress.GetByLessonID(ctx, lessonID)
	if err != nil {
		return nil, NewLessonServiceError("get_progress", "failed to retrieve progress", err)
	}
	return progress, nil
}

// GetSections implements LessonService.GetSections
func (s *lessonService) GetSections(ctx context.Context, lessonID uuid.UUID) ([]*domain.Section, error) {
	// Distinguish "no sections yet" from "no such lesson".
	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		return nil, NewLessonServiceError("get_sections", "failed to retrieve lesson", err)
	}

	sections, err := s.sections.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, NewLessonServiceError("get_sections", "failed to list sections", err)
	}
	return sections, nil
}

// SaveProgress implements LessonService.SaveProgress
func (s *lessonService) SaveProgress(ctx context.Context, progress *domain.GenerationProgress) error {
	if err := s.progress.Update(ctx, progress); err != nil {
		return NewLessonServiceError("save_progress", "failed to update progress", err)
	}
	return nil
}

// SaveSectionWithProgress implements LessonService.SaveSectionWithProgress
func (s *lessonService) SaveSectionWithProgress(
	ctx context.Context,
	section *domain.Section,
	progress *domain.GenerationProgress,
) error {
	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.sections.WithTx(tx).Create(ctx, section); err != nil {
			return NewLessonServiceError("save_section", "failed to save section", err)
		}

		if err := s.progress.WithTx(tx).Update(ctx, progress); err != nil {
			return NewLessonServiceError("save_section", "failed to update progress", err)
		}

		return nil
	})
}

// RenumberSections implements LessonService.RenumberSections
func (s *lessonService) RenumberSections(ctx context.Context, lessonID uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txSections := s.sections.WithTx(tx)

		sections, err := txSections.ListByLesson(ctx, lessonID)
		if err != nil {
			return NewLessonServiceError("renumber_sections", "failed to list sections", err)
		}

		for i, section := range sections {
			position := i + 1
			if section.Position == position {
				continue
			}

			if err := txSections.UpdatePosition(ctx, section.ID, position); err != nil {
				return NewLessonServiceError("renumber_sections", "failed to move section", err)
			}
		}

		return nil
	})
}
