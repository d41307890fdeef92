package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/domain"
)

// LessonStore defines the interface for lesson data persistence.
type LessonStore interface {
	// Create saves a new lesson to the store. It handles domain validation
	// internally. Returns ErrInvalidEntity if the creator does not exist.
	Create(ctx context.Context, lesson *domain.Lesson) error

	// GetByID retrieves a lesson by its unique ID.
	// Returns ErrLessonNotFound if the lesson does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	// WithTx returns a new LessonStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) LessonStore
}

// SectionStore defines the interface for section data persistence.
type SectionStore interface {
	// Create saves a new section to the store.
	// Returns ErrInvalidEntity if the lesson does not exist.
	Create(ctx context.Context, section *domain.Section) error

	// GetByID retrieves a section by its unique ID.
	// Returns ErrSectionNotFound if the section does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Section, error)

	// UpdateContent overwrites a section's content.
	// Returns ErrSectionNotFound if the section does not exist.
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error

	// UpdatePosition moves a section to a new position within its lesson.
	// Returns ErrSectionNotFound if the section does not exist.
	UpdatePosition(ctx context.Context, id uuid.UUID, position int) error

	// ListByLesson retrieves all sections of a lesson ordered by
	// (position, id). Returns an empty slice when the lesson has none.
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.Section, error)

	// WithTx returns a new SectionStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SectionStore
}

// ProgressStore defines the interface for generation progress persistence.
// The owning generation job is the sole writer of a progress row; pollers
// only read, so Update needs no optimistic locking.
type ProgressStore interface {
	// Create saves a new progress record.
	Create(ctx context.Context, progress *domain.GenerationProgress) error

	// GetByLessonID retrieves the progress record of a lesson.
	// Returns ErrProgressNotFound if none exists.
	GetByLessonID(ctx context.Context, lessonID uuid.UUID) (*domain.GenerationProgress, error)

	// Update persists the current counters and status of a progress record.
	// Returns ErrProgressNotFound if the record does not exist.
	Update(ctx context.Context, progress *domain.GenerationProgress) error

	// WithTx returns a new ProgressStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ProgressStore
}

// ImproveJobStore defines the interface for improvement job persistence.
type ImproveJobStore interface {
	// Create saves a new improve job.
	Create(ctx context.Context, job *domain.ImproveJob) error

	// GetByID retrieves an improve job by its unique ID.
	// Returns ErrImproveJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ImproveJob, error)

	// Update persists the current status and result of an improve job.
	// Returns ErrImproveJobNotFound if the job does not exist.
	Update(ctx context.Context, job *domain.ImproveJob) error

	// WithTx returns a new ImproveJobStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ImproveJobStore
}
