package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fastlesson/fastlesson-api/internal/api/shared"
	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/service"
)

// ImproveSectionRequest represents the request body for improving a section
type ImproveSectionRequest struct {
	Mode string `json:"mode" validate:"required,oneof=simplify complexify more_tasks remove_tasks"`
}

// ImproveJobResponse represents the response data for an improvement job
type ImproveJobResponse struct {
	ID            string    `json:"id"`
	SectionID     string    `json:"section_id"`
	Mode          string    `json:"mode"`
	Status        string    `json:"status"`
	ResultContent string    `json:"result_content,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ImproveHandler handles section improvement HTTP requests
type ImproveHandler struct {
	improveService service.ImproveService
	validator      *validator.Validate
}

// NewImproveHandler creates a new ImproveHandler
func NewImproveHandler(improveService service.ImproveService) *ImproveHandler {
	return &ImproveHandler{
		improveService: improveService,
		validator:      validator.New(),
	}
}

// ImproveSection handles POST /api/sections/{id}/improve requests. The
// rewrite happens asynchronously, so a successful response is 202 Accepted
// with the pending job.
func (h *ImproveHandler) ImproveSection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid section ID")
		return
	}

	var req ImproveSectionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	job, err := h.improveService.CreateImproveJobAndEnqueueTask(
		r.Context(), sectionID, domain.ImproveMode(req.Mode))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, improveJobToResponse(job))
}

// GetImproveJob handles GET /api/improvements/{id} requests
func (h *ImproveHandler) GetImproveJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.improveService.GetJob(r.Context(), jobID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, improveJobToResponse(job))
}

func improveJobToResponse(job *domain.ImproveJob) ImproveJobResponse {
	return ImproveJobResponse{
		ID:            job.ID.String(),
		SectionID:     job.SectionID.String(),
		Mode:          string(job.Mode),
		Status:        string(job.Status),
		ResultContent: job.ResultContent,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
}
