package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fastlesson/fastlesson-api/internal/api/shared"
	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/service"
)

// CreateLessonRequest represents the request body for creating a new lesson
type CreateLessonRequest struct {
	CreatorID string `json:"creator_id" validate:"required,uuid"`
	Title     string `json:"title"      validate:"required,min=1,max=200"`
	Subject   string `json:"subject"    validate:"required"`
	Level     string `json:"level"      validate:"required"`
}

// LessonResponse represents the response data for a lesson
type LessonResponse struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// ProgressResponse represents the response data for generation progress
type ProgressResponse struct {
	LessonID  string    `json:"lesson_id"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Percent   int       `json:"percent"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SectionResponse represents the response data for a lesson section
type SectionResponse struct {
	ID        string    `json:"id"`
	LessonID  string    `json:"lesson_id"`
	Position  int       `json:"position"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	HasTask   bool      `json:"has_task"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateLessonResponse bundles the created lesson with its initial progress
// snapshot so clients can start polling immediately.
type CreateLessonResponse struct {
	Lesson   LessonResponse   `json:"lesson"`
	Progress ProgressResponse `json:"progress"`
}

// LessonHandler handles lesson-related HTTP requests
type LessonHandler struct {
	lessonService service.LessonService
	validator     *validator.Validate
}

// NewLessonHandler creates a new LessonHandler
func NewLessonHandler(lessonService service.LessonService) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		validator:     validator.New(),
	}
}

// CreateLesson handles POST /api/lessons requests. Generation happens
// asynchronously, so a successful response is 202 Accepted with a pending
// progress snapshot.
func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	creatorID, err := uuid.Parse(req.CreatorID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid creator ID")
		return
	}

	lesson, err := h.lessonService.CreateLessonAndEnqueueTask(
		r.Context(), creatorID, req.Title, domain.Subject(req.Subject), domain.Level(req.Level))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	progress, err := h.lessonService.GetProgress(r.Context(), lesson.ID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, CreateLessonResponse{
		Lesson:   lessonToResponse(lesson),
		Progress: progressToResponse(progress),
	})
}

// GetProgress handles GET /api/lessons/{id}/progress requests
func (h *LessonHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	lessonID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid lesson ID")
		return
	}

	progress, err := h.lessonService.GetProgress(r.Context(), lessonID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress))
}

// GetSections handles GET /api/lessons/{id}/sections requests
func (h *LessonHandler) GetSections(w http.ResponseWriter, r *http.Request) {
	lessonID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid lesson ID")
		return
	}

	sections, err := h.lessonService.GetSections(r.Context(), lessonID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	response := make([]SectionResponse, 0, len(sections))
	for _, section := range sections {
		response = append(response, sectionToResponse(section))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// pathUUID extracts and parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func lessonToResponse(lesson *domain.Lesson) LessonResponse {
	return LessonResponse{
		ID:        lesson.ID.String(),
		CreatorID: lesson.CreatorID.String(),
		Title:     lesson.Title,
		Subject:   string(lesson.Subject),
		Level:     string(lesson.Level),
		CreatedAt: lesson.CreatedAt,
	}
}

func progressToResponse(progress *domain.GenerationProgress) ProgressResponse {
	return ProgressResponse{
		LessonID:  progress.LessonID.String(),
		Total:     progress.Total,
		Completed: progress.Completed,
		Percent:   progress.Percent(),
		Status:    string(progress.Status),
		UpdatedAt: progress.UpdatedAt,
	}
}

func sectionToResponse(section *domain.Section) SectionResponse {
	return SectionResponse{
		ID:        section.ID.String(),
		LessonID:  section.LessonID.String(),
		Position:  section.Position,
		Title:     section.Title,
		Content:   section.Content,
		HasTask:   section.HasTask,
		UpdatedAt: section.UpdatedAt,
	}
}
