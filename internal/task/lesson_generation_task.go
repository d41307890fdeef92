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

// Status constants shared by the concrete tasks.
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilLessonService  = errors.New("lesson service cannot be nil")
	ErrNilImproveService = errors.New("improve service cannot be nil")
	ErrNilGenerator      = errors.New("generator cannot be nil")
	ErrNilLogger         = errors.New("logger cannot be nil")
	ErrEmptyLessonID     = errors.New("lesson ID cannot be empty")
	ErrEmptyJobID        = errors.New("improve job ID cannot be empty")
)

// LessonGenerationService defines the persistence operations the lesson
// generation task needs. The service owns all transaction boundaries; the
// task only sequences the work.
type LessonGenerationService interface {
	// GetLesson retrieves a lesson by its ID
	GetLesson(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, error)

	// GetProgress retrieves the generation progress record of a lesson
	GetProgress(ctx context.Context, lessonID uuid.UUID) (*domain.GenerationProgress, error)

	// SaveProgress persists the current counters and status of a progress record
	SaveProgress(ctx context.Context, progress *domain.GenerationProgress) error

	// SaveSectionWithProgress persists a new section and the updated
	// progress counters in a single transaction, so one section's fate
	// never depends on another's
	SaveSectionWithProgress(ctx context.Context, section *domain.Section, progress *domain.GenerationProgress) error

	// RenumberSections rewrites section positions to a contiguous 1..N
	// range in (position, id) order
	RenumberSections(ctx context.Context, lessonID uuid.UUID) error
}

// ObjectGenerator defines the interface for JSON object generation backed
// by the model catalog.
type ObjectGenerator interface {
	// GenerateObject asks the models for a JSON object answering the request
	GenerateObject(ctx context.Context, req generation.Request) (map[string]any, error)
}

// lessonGenerationPayload represents the serialized data stored in the task
type lessonGenerationPayload struct {
	LessonID uuid.UUID `json:"lesson_id"`
}

// LessonGenerationTask implements the Task interface for generating the
// full section set of a lesson: one outline call that plans the sections,
// then one content call per planned section. Individual section failures
// shrink the plan instead of failing the job.
type LessonGenerationTask struct {
	id        uuid.UUID
	lessonID  uuid.UUID
	service   LessonGenerationService
	generator ObjectGenerator
	logger    *slog.Logger
	status    string // Using string instead of TaskStatus to avoid circular imports
}

// NewLessonGenerationTask creates a new lesson generation task
func NewLessonGenerationTask(
	lessonID uuid.UUID,
	service LessonGenerationService,
	generator ObjectGenerator,
	logger *slog.Logger,
) (*LessonGenerationTask, error) {
	if service == nil {
		return nil, ErrNilLessonService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if lessonID == uuid.Nil {
		return nil, ErrEmptyLessonID
	}

	return &LessonGenerationTask{
		id:        uuid.New(),
		lessonID:  lessonID,
		service:   service,
		generator: generator,
		logger:    logger.With("task_type", TaskTypeLessonGeneration, "lesson_id", lessonID),
		status:    statusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *LessonGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *LessonGenerationTask) Type() string {
	return TaskTypeLessonGeneration
}

// Payload returns the task data as a byte slice
func (t *LessonGenerationTask) Payload() []byte {
	payload := lessonGenerationPayload{
		LessonID: t.lessonID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *LessonGenerationTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the lesson generation task: outline, per-section content,
// position renumbering, and the final progress status. Section-level
// failures are soft (the planned total shrinks and the loop continues);
// only outline failures and a completely empty result are terminal.
func (t *LessonGenerationTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting lesson generation task")

	if err := ctx.Err(); err != nil {
		t.status = statusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	lesson, err := t.service.GetLesson(ctx, t.lessonID)
	if err != nil {
		if store.IsNotFoundError(err) {
			// The lesson was deleted between submit and execution.
			t.status = statusCompleted
			t.logger.Warn("lesson no longer exists, skipping generation")
			return nil
		}
		t.status = statusFailed
		return fmt.Errorf("failed to retrieve lesson: %w", err)
	}

	progress, err := t.service.GetProgress(ctx, t.lessonID)
	if err != nil {
		t.status = statusFailed
		return fmt.Errorf("failed to retrieve generation progress: %w", err)
	}

	progress.Start()
	if err := t.service.SaveProgress(ctx, progress); err != nil {
		t.status = statusFailed
		return fmt.Errorf("failed to save progress: %w", err)
	}

	hints, err := t.generateOutline(ctx, lesson, progress)
	if err != nil {
		t.status = statusFailed
		return err
	}

	t.logger.Info("outline generated", "planned_sections", len(hints))

	if err := t.generateSections(ctx, lesson, progress, hints); err != nil {
		t.status = statusFailed
		return err
	}

	if err := t.service.RenumberSections(ctx, t.lessonID); err != nil {
		// Positions stay stable but possibly sparse; not worth failing
		// a job whose content is already saved.
		t.logger.Error("failed to renumber sections", "error", err)
	}

	progress.Finalize()
	if err := t.service.SaveProgress(ctx, progress); err != nil {
		t.status = statusFailed
		return fmt.Errorf("failed to save final progress: %w", err)
	}

	if progress.Status == domain.GenerationStatusFailed {
		t.status = statusFailed
		return fmt.Errorf("no sections were generated for lesson %s", t.lessonID)
	}

	t.status = statusCompleted
	t.logger.Info("lesson generation task completed",
		"completed", progress.Completed,
		"total", progress.Total,
		"status", string(progress.Status))
	return nil
}

// generateOutline runs the planning call and fixes the section total.
// Any failure here is terminal: without a plan there is nothing to build.
func (t *LessonGenerationTask) generateOutline(
	ctx context.Context,
	lesson *domain.Lesson,
	progress *domain.GenerationProgress,
) ([]string, error) {
	outline, err := t.generator.GenerateObject(ctx, generation.NewRequest(buildOutlinePrompt(lesson)))
	if err != nil {
		t.markProgressFailed(ctx, progress)
		return nil, fmt.Errorf("failed to generate lesson outline: %w", err)
	}

	rawSections, ok := outline["sections"].([]any)
	if !ok {
		t.markProgressFailed(ctx, progress)
		return nil, fmt.Errorf("outline 'sections' is not a list for lesson %s", t.lessonID)
	}

	hints := make([]string, 0, len(rawSections))
	for _, raw := range rawSections {
		hints = append(hints, topicHint(raw))
	}

	if err := progress.SetTotal(len(hints)); err != nil {
		t.markProgressFailed(ctx, progress)
		return nil, fmt.Errorf("failed to set section total: %w", err)
	}
	if err := t.service.SaveProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to save progress after outline: %w", err)
	}

	return hints, nil
}

// generateSections produces and persists one section per hint. Each
// section's generation and persistence is isolated: a failure drops that
// section from the plan and moves on.
func (t *LessonGenerationTask) generateSections(
	ctx context.Context,
	lesson *domain.Lesson,
	progress *domain.GenerationProgress,
	hints []string,
) error {
	for i, hint := range hints {
		position := i + 1
		log := t.logger.With("position", position, "planned", len(hints))

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("task cancelled by context: %w", err)
		}

		log.Info("generating section", "hint", truncate(hint, 200))

		section, err := t.generateOneSection(ctx, lesson, position, hint)
		if err != nil {
			log.Warn("failed to generate section, dropping it from the plan", "error", err)
			t.dropPlanned(ctx, progress)
			continue
		}

		if err := progress.IncrementCompleted(); err != nil {
			log.Error("progress counters out of sync", "error", err)
			t.dropPlanned(ctx, progress)
			continue
		}

		if err := t.service.SaveSectionWithProgress(ctx, section, progress); err != nil {
			log.Error("failed to save section, dropping it from the plan", "error", err)

			// The transaction rolled back, so the stored counters are still
			// pre-increment. Reload them before shrinking the plan.
			fresh, gerr := t.service.GetProgress(ctx, t.lessonID)
			if gerr != nil {
				return fmt.Errorf("failed to reload progress after save failure: %w", gerr)
			}
			*progress = *fresh

			t.dropPlanned(ctx, progress)
			continue
		}

		log.Info("section saved", "has_task", section.HasTask)
	}

	return nil
}

// generateOneSection runs a single content call and validates its shape.
func (t *LessonGenerationTask) generateOneSection(
	ctx context.Context,
	lesson *domain.Lesson,
	position int,
	hint string,
) (*domain.Section, error) {
	data, err := t.generator.GenerateObject(ctx, generation.NewRequest(buildSectionPrompt(lesson, hint)))
	if err != nil {
		return nil, err
	}

	title, _ := data["title"].(string)
	if title == "" {
		return nil, errors.New("section data missing 'title'")
	}

	content, _ := data["content"].(string)
	if content == "" {
		return nil, errors.New("section data missing 'content'")
	}

	hasTask, _ := data["has_task"].(bool)

	return domain.NewSection(lesson.ID, position, title, content, hasTask)
}

// dropPlanned shrinks the planned total after a section failure and saves
// the new counters so pollers see the plan adjust immediately.
func (t *LessonGenerationTask) dropPlanned(ctx context.Context, progress *domain.GenerationProgress) {
	progress.DropPlanned()
	if err := t.service.SaveProgress(ctx, progress); err != nil {
		t.logger.Error("failed to save progress after dropping section", "error", err)
	}
}

// markProgressFailed records a terminal failure, logging rather than
// propagating save errors since the caller is already on an error path.
func (t *LessonGenerationTask) markProgressFailed(ctx context.Context, progress *domain.GenerationProgress) {
	progress.MarkFailed()
	if err := t.service.SaveProgress(ctx, progress); err != nil {
		t.logger.Error("failed to mark progress as failed", "error", err)
	}
}

// topicHint extracts the section topic from one outline entry, tolerating
// both object entries and bare strings.
func topicHint(raw any) string {
	switch v := raw.(type) {
	case map[string]any:
		if topic, ok := v["section_topic"].(string); ok && topic != "" {
			return topic
		}
		if prompt, ok := v["prompt"].(string); ok && prompt != "" {
			return prompt
		}
		return fmt.Sprint(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// truncate shortens a string for log output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
