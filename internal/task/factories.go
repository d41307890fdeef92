package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// LessonGenerationTaskFactory creates LessonGenerationTask instances
type LessonGenerationTaskFactory struct {
	service   LessonGenerationService
	generator ObjectGenerator
	logger    *slog.Logger
}

// NewLessonGenerationTaskFactory creates a new factory for LessonGenerationTasks
func NewLessonGenerationTaskFactory(
	service LessonGenerationService,
	generator ObjectGenerator,
	logger *slog.Logger,
) *LessonGenerationTaskFactory {
	return &LessonGenerationTaskFactory{
		service:   service,
		generator: generator,
		logger:    logger.With("component", "lesson_generation_task_factory"),
	}
}

// CreateTask creates a new LessonGenerationTask for the specified lesson
func (f *LessonGenerationTaskFactory) CreateTask(lessonID uuid.UUID) (Task, error) {
	return NewLessonGenerationTask(lessonID, f.service, f.generator, f.logger)
}

// SectionImproveTaskFactory creates SectionImproveTask instances
type SectionImproveTaskFactory struct {
	service   SectionImproveService
	generator ObjectGenerator
	logger    *slog.Logger
}

// NewSectionImproveTaskFactory creates a new factory for SectionImproveTasks
func NewSectionImproveTaskFactory(
	service SectionImproveService,
	generator ObjectGenerator,
	logger *slog.Logger,
) *SectionImproveTaskFactory {
	return &SectionImproveTaskFactory{
		service:   service,
		generator: generator,
		logger:    logger.With("component", "section_improve_task_factory"),
	}
}

// CreateTask creates a new SectionImproveTask for the specified improve job
func (f *SectionImproveTaskFactory) CreateTask(jobID uuid.UUID) (Task, error) {
	return NewSectionImproveTask(jobID, f.service, f.generator, f.logger)
}
