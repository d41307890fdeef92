package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

// mockImproveService is a mock implementation of the ImproveService interface
type mockImproveService struct {
	createFn func(ctx context.Context, sectionID uuid.UUID, mode domain.ImproveMode) (*domain.ImproveJob, error)
	getJobFn func(ctx context.Context, jobID uuid.UUID) (*domain.ImproveJob, error)
}

func (m *mockImproveService) CreateImproveJobAndEnqueueTask(
	ctx context.Context,
	sectionID uuid.UUID,
	mode domain.ImproveMode,
) (*domain.ImproveJob, error) {
	return m.createFn(ctx, sectionID, mode)
}

func (m *mockImproveService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ImproveJob, error) {
	return m.getJobFn(ctx, jobID)
}

func (m *mockImproveService) SaveJob(ctx context.Context, job *domain.ImproveJob) error {
	return errors.New("not implemented in mock")
}

func (m *mockImproveService) GetSection(ctx context.Context, sectionID uuid.UUID) (*domain.Section, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *mockImproveService) ApplyImprovedContent(
	ctx context.Context,
	sectionID uuid.UUID,
	job *domain.ImproveJob,
	content string,
) error {
	return errors.New("not implemented in mock")
}

func improveRouter(svc *mockImproveService) http.Handler {
	handler := NewImproveHandler(svc)
	router := chi.NewRouter()
	router.Post("/api/sections/{id}/improve", handler.ImproveSection)
	router.Get("/api/improvements/{id}", handler.GetImproveJob)
	return router
}

func TestImproveSection(t *testing.T) {
	sectionID := uuid.New()
	jobID := uuid.New()

	pendingJob := &domain.ImproveJob{
		ID:        jobID,
		SectionID: sectionID,
		Mode:      domain.ImproveModeSimplify,
		Status:    domain.ImproveStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	tests := []struct {
		name           string
		path           string
		body           string
		serviceResult  *domain.ImproveJob
		serviceError   error
		expectedStatus int
	}{
		{
			name:           "Success",
			path:           "/api/sections/" + sectionID.String() + "/improve",
			body:           `{"mode":"simplify"}`,
			serviceResult:  pendingJob,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "Invalid Section ID",
			path:           "/api/sections/not-a-uuid/improve",
			body:           `{"mode":"simplify"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed JSON",
			path:           "/api/sections/" + sectionID.String() + "/improve",
			body:           `{"mode":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown Mode",
			path:           "/api/sections/" + sectionID.String() + "/improve",
			body:           `{"mode":"embellish"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Mode",
			path:           "/api/sections/" + sectionID.String() + "/improve",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown Section",
			path:           "/api/sections/" + sectionID.String() + "/improve",
			body:           `{"mode":"more_tasks"}`,
			serviceError:   store.ErrSectionNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Service Failure",
			path:           "/api/sections/" + sectionID.String() + "/improve",
			body:           `{"mode":"complexify"}`,
			serviceError:   errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockImproveService{
				createFn: func(ctx context.Context, gotSection uuid.UUID, mode domain.ImproveMode) (*domain.ImproveJob, error) {
					if tc.serviceError != nil {
						return nil, tc.serviceError
					}
					assert.Equal(t, sectionID, gotSection)
					assert.Equal(t, domain.ImproveModeSimplify, mode)
					return tc.serviceResult, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			improveRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusAccepted {
				var resp ImproveJobResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, jobID.String(), resp.ID)
				assert.Equal(t, sectionID.String(), resp.SectionID)
				assert.Equal(t, "simplify", resp.Mode)
				assert.Equal(t, "pending", resp.Status)
				assert.Empty(t, resp.ResultContent)
			}
		})
	}
}

func TestGetImproveJob(t *testing.T) {
	sectionID := uuid.New()
	jobID := uuid.New()

	tests := []struct {
		name           string
		path           string
		serviceResult  *domain.ImproveJob
		serviceError   error
		expectedStatus int
	}{
		{
			name: "Done With Result",
			path: "/api/improvements/" + jobID.String(),
			serviceResult: &domain.ImproveJob{
				ID:            jobID,
				SectionID:     sectionID,
				Mode:          domain.ImproveModeMoreTasks,
				Status:        domain.ImproveStatusDone,
				ResultContent: "## Extra practice",
				CreatedAt:     time.Now().UTC(),
				UpdatedAt:     time.Now().UTC(),
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown Job",
			path:           "/api/improvements/" + jobID.String(),
			serviceError:   store.ErrImproveJobNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid Job ID",
			path:           "/api/improvements/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockImproveService{
				getJobFn: func(ctx context.Context, gotJob uuid.UUID) (*domain.ImproveJob, error) {
					assert.Equal(t, jobID, gotJob)
					return tc.serviceResult, tc.serviceError
				},
			}

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rr := httptest.NewRecorder()
			improveRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusOK {
				var resp ImproveJobResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "more_tasks", resp.Mode)
				assert.Equal(t, "done", resp.Status)
				assert.Equal(t, "## Extra practice", resp.ResultContent)
			}
		})
	}
}
