package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/generation"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

// SectionImproveService defines the persistence operations the section
// improvement task needs.
type SectionImproveService interface {
	// GetJob retrieves an improve job by its ID
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ImproveJob, error)

	// SaveJob persists the current status and result of an improve job
	SaveJob(ctx context.Context, job *domain.ImproveJob) error

	// GetSection retrieves a section by its ID
	GetSection(ctx context.Context, sectionID uuid.UUID) (*domain.Section, error)

	// ApplyImprovedContent replaces the section's content and marks the job
	// done with its result in a single transaction
	ApplyImprovedContent(ctx context.Context, sectionID uuid.UUID, job *domain.ImproveJob, content string) error
}

// sectionImprovePayload represents the serialized data stored in the task
type sectionImprovePayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// SectionImproveTask implements the Task interface for rewriting one
// section's content according to the improve job's mode. The section and
// the job record move together: either both reflect the rewrite or
// neither does.
type SectionImproveTask struct {
	id        uuid.UUID
	jobID     uuid.UUID
	service   SectionImproveService
	generator ObjectGenerator
	logger    *slog.Logger
	status    string
}

// NewSectionImproveTask creates a new section improvement task
func NewSectionImproveTask(
	jobID uuid.UUID,
	service SectionImproveService,
	generator ObjectGenerator,
	logger *slog.Logger,
) (*SectionImproveTask, error) {
	if service == nil {
		return nil, ErrNilImproveService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if jobID == uuid.Nil {
		return nil, ErrEmptyJobID
	}

	return &SectionImproveTask{
		id:        uuid.New(),
		jobID:     jobID,
		service:   service,
		generator: generator,
		logger:    logger.With("task_type", TaskTypeSectionImprove, "job_id", jobID),
		status:    statusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *SectionImproveTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *SectionImproveTask) Type() string {
	return TaskTypeSectionImprove
}

// Payload returns the task data as a byte slice
func (t *SectionImproveTask) Payload() []byte {
	payload := sectionImprovePayload{
		JobID: t.jobID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *SectionImproveTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the improvement: load the job and its section, generate the
// rewrite, and apply it atomically. A job or section that disappeared is a
// no-op; a failed rewrite marks the job failed and leaves the section
// untouched.
func (t *SectionImproveTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting section improvement task")

	if err := ctx.Err(); err != nil {
		t.status = statusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	job, err := t.service.GetJob(ctx, t.jobID)
	if err != nil {
		if store.IsNotFoundError(err) {
			t.status = statusCompleted
			t.logger.Warn("improve job no longer exists, skipping")
			return nil
		}
		t.status = statusFailed
		return fmt.Errorf("failed to retrieve improve job: %w", err)
	}

	section, err := t.service.GetSection(ctx, job.SectionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// The job record stays untouched, as if never started.
			t.status = statusCompleted
			t.logger.Warn("target section no longer exists, skipping",
				"section_id", job.SectionID)
			return nil
		}
		t.status = statusFailed
		return fmt.Errorf("failed to retrieve section: %w", err)
	}

	job.MarkInProgress(t.id)
	if err := t.service.SaveJob(ctx, job); err != nil {
		t.status = statusFailed
		return fmt.Errorf("failed to save improve job: %w", err)
	}

	result, err := t.generator.GenerateObject(ctx, generation.NewRequest(buildImprovePrompt(section, job.Mode)))
	if err != nil {
		t.markJobFailed(ctx, job)
		t.status = statusFailed
		return fmt.Errorf("failed to generate improved content: %w", err)
	}

	newContent, _ := result["improved_content"].(string)
	if newContent == "" {
		t.markJobFailed(ctx, job)
		t.status = statusFailed
		return errors.New("model did not return an 'improved_content' field")
	}

	job.MarkDone(newContent)
	if err := t.service.ApplyImprovedContent(ctx, section.ID, job, newContent); err != nil {
		t.markJobFailed(ctx, job)
		t.status = statusFailed
		return fmt.Errorf("failed to apply improved content: %w", err)
	}

	t.status = statusCompleted
	t.logger.Info("section improvement task completed",
		"section_id", section.ID,
		"mode", string(job.Mode),
		"content_length", len(newContent))
	return nil
}

// markJobFailed records a terminal job failure, logging rather than
// propagating save errors since the caller is already on an error path.
func (t *SectionImproveTask) markJobFailed(ctx context.Context, job *domain.ImproveJob) {
	job.MarkFailed()
	if err := t.service.SaveJob(ctx, job); err != nil {
		t.logger.Error("failed to mark improve job as failed", "error", err)
	}
}
