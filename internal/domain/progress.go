package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// GenerationStatus represents the lifecycle state of a lesson generation job.
type GenerationStatus string

// Possible generation status values. A job left IN_PROGRESS after its run
// finished means it completed only partially: some sections were produced,
// some were skipped.
const (
	GenerationStatusPending    GenerationStatus = "pending"
	GenerationStatusInProgress GenerationStatus = "in_progress"
	GenerationStatusDone       GenerationStatus = "done"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// Common validation errors for GenerationProgress
var (
	ErrEmptyProgressID          = errors.New("progress ID cannot be empty")
	ErrEmptyProgressLessonID    = errors.New("progress lesson ID cannot be empty")
	ErrInvalidGenerationStatus  = errors.New("invalid generation status")
	ErrCompletedExceedsTotal    = errors.New("completed cannot exceed total")
	ErrTotalAlreadySet          = errors.New("total is already set for this job")
	ErrProgressCountersNegative = errors.New("progress counters cannot be negative")
)

// GenerationProgress tracks how many sections have been planned (Total)
// versus successfully produced (Completed) for one lesson generation job.
// The owning job is the sole writer; pollers only read, so every mutation
// keeps the record in a state safe to observe: Completed never exceeds
// Total, and Total never grows after the outline phase set it.
type GenerationProgress struct {
	ID        uuid.UUID        `json:"id"`
	LessonID  uuid.UUID        `json:"lesson_id"`
	Total     int              `json:"total"`
	Completed int              `json:"completed"`
	Status    GenerationStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewGenerationProgress creates a pending progress record for a lesson.
// Returns an error if validation fails.
func NewGenerationProgress(lessonID uuid.UUID) (*GenerationProgress, error) {
	progress := &GenerationProgress{
		ID:        uuid.New(),
		LessonID:  lessonID,
		Total:     0,
		Completed: 0,
		Status:    GenerationStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the GenerationProgress has valid data.
func (p *GenerationProgress) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProgressID
	}

	if p.LessonID == uuid.Nil {
		return ErrEmptyProgressLessonID
	}

	if !isValidGenerationStatus(p.Status) {
		return ErrInvalidGenerationStatus
	}

	if p.Total < 0 || p.Completed < 0 {
		return ErrProgressCountersNegative
	}

	if p.Completed > p.Total {
		return ErrCompletedExceedsTotal
	}

	return nil
}

// Start marks the job as running and resets the completed counter. Called
// when the outline phase begins, before Total is known.
func (p *GenerationProgress) Start() {
	p.Status = GenerationStatusInProgress
	p.Completed = 0
	p.UpdatedAt = time.Now().UTC()
}

// SetTotal fixes the planned section count once the outline phase has
// parsed successfully. Total may only be set once per job.
func (p *GenerationProgress) SetTotal(total int) error {
	if total < 0 {
		return ErrProgressCountersNegative
	}
	if p.Total != 0 {
		return ErrTotalAlreadySet
	}

	p.Total = total
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IncrementCompleted records one successfully persisted section. Returns an
// error if the increment would break the completed <= total invariant.
func (p *GenerationProgress) IncrementCompleted() error {
	if p.Completed+1 > p.Total {
		return ErrCompletedExceedsTotal
	}

	p.Completed++
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// DropPlanned removes one planned section from the total after its
// generation or persistence failed, flooring at zero. The job continues
// with the remaining hints.
func (p *GenerationProgress) DropPlanned() {
	if p.Total > 0 {
		p.Total--
	}
	p.UpdatedAt = time.Now().UTC()
}

// MarkFailed forces the job into its terminal failed state.
func (p *GenerationProgress) MarkFailed() {
	p.Status = GenerationStatusFailed
	p.UpdatedAt = time.Now().UTC()
}

// Finalize computes the terminal status after the section loop. A job that
// produced nothing is failed, even when total collapsed to zero and the
// completed == total comparison would hold; a partially populated job stays
// in_progress so callers can distinguish it from a full success.
func (p *GenerationProgress) Finalize() {
	switch {
	case p.Completed == 0:
		p.Status = GenerationStatusFailed
	case p.Completed == p.Total:
		p.Status = GenerationStatusDone
	default:
		p.Status = GenerationStatusInProgress
	}
	p.UpdatedAt = time.Now().UTC()
}

// Percent returns the completion percentage (0-100), capped at 100.
func (p *GenerationProgress) Percent() int {
	if p.Total == 0 {
		return 0
	}

	percent := p.Completed * 100 / p.Total
	if percent > 100 {
		return 100
	}
	return percent
}

func isValidGenerationStatus(status GenerationStatus) bool {
	switch status {
	case GenerationStatusPending, GenerationStatusInProgress,
		GenerationStatusDone, GenerationStatusFailed:
		return true
	default:
		return false
	}
}
