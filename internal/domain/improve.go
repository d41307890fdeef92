package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ImproveMode identifies the transformation requested for a section.
type ImproveMode string

// Possible improve mode values
const (
	ImproveModeSimplify    ImproveMode = "simplify"
	ImproveModeComplexify  ImproveMode = "complexify"
	ImproveModeMoreTasks   ImproveMode = "more_tasks"
	ImproveModeRemoveTasks ImproveMode = "remove_tasks"
)

// ImproveStatus represents the lifecycle state of an improvement job.
type ImproveStatus string

// Possible improve status values
const (
	ImproveStatusPending    ImproveStatus = "pending"
	ImproveStatusInProgress ImproveStatus = "in_progress"
	ImproveStatusDone       ImproveStatus = "done"
	ImproveStatusFailed     ImproveStatus = "failed"
)

// Common validation errors for ImproveJob
var (
	ErrEmptyImproveJobID        = errors.New("improve job ID cannot be empty")
	ErrEmptyImproveJobSectionID = errors.New("improve job section ID cannot be empty")
	ErrInvalidImproveMode       = errors.New("invalid improve mode")
	ErrInvalidImproveStatus     = errors.New("invalid improve status")
)

// ImproveJob is a one-shot request to rewrite a single section's content.
// It moves pending -> in_progress -> done/failed exactly once; on success
// ResultContent carries the text that replaced the section content.
type ImproveJob struct {
	ID            uuid.UUID     `json:"id"`
	SectionID     uuid.UUID     `json:"section_id"`
	Mode          ImproveMode   `json:"mode"`
	Status        ImproveStatus `json:"status"`
	TaskID        uuid.UUID     `json:"task_id,omitempty"`
	ResultContent string        `json:"result_content,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewImproveJob creates a pending improvement job for a section.
// Returns an error if validation fails.
func NewImproveJob(sectionID uuid.UUID, mode ImproveMode) (*ImproveJob, error) {
	job := &ImproveJob{
		ID:        uuid.New(),
		SectionID: sectionID,
		Mode:      mode,
		Status:    ImproveStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the ImproveJob has valid data.
func (j *ImproveJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyImproveJobID
	}

	if j.SectionID == uuid.Nil {
		return ErrEmptyImproveJobSectionID
	}

	if !IsValidImproveMode(j.Mode) {
		return ErrInvalidImproveMode
	}

	if !isValidImproveStatus(j.Status) {
		return ErrInvalidImproveStatus
	}

	return nil
}

// MarkInProgress records that a worker picked the job up, remembering the
// handle of the background task executing it.
func (j *ImproveJob) MarkInProgress(taskID uuid.UUID) {
	j.Status = ImproveStatusInProgress
	j.TaskID = taskID
	j.UpdatedAt = time.Now().UTC()
}

// MarkDone records a successful rewrite and its result.
func (j *ImproveJob) MarkDone(resultContent string) {
	j.Status = ImproveStatusDone
	j.ResultContent = resultContent
	j.UpdatedAt = time.Now().UTC()
}

// MarkFailed records a terminal failure. The target section is untouched.
func (j *ImproveJob) MarkFailed() {
	j.Status = ImproveStatusFailed
	j.UpdatedAt = time.Now().UTC()
}

// IsValidImproveMode reports whether mode is one of the supported
// transformations.
func IsValidImproveMode(mode ImproveMode) bool {
	switch mode {
	case ImproveModeSimplify, ImproveModeComplexify,
		ImproveModeMoreTasks, ImproveModeRemoveTasks:
		return true
	default:
		return false
	}
}

func isValidImproveStatus(status ImproveStatus) bool {
	switch status {
	case ImproveStatusPending, ImproveStatusInProgress,
		ImproveStatusDone, ImproveStatusFailed:
		return true
	default:
		return false
	}
}
