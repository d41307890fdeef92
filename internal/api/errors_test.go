package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastlesson/fastlesson-api/internal/domain"
	"github.com/fastlesson/fastlesson-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "User Not Found",
			err:      store.ErrUserNotFound,
			expected: http.StatusNotFound,
		},
		{
			name:     "Wrapped Lesson Not Found",
			err:      fmt.Errorf("get lesson: %w", store.ErrLessonNotFound),
			expected: http.StatusNotFound,
		},
		{
			name:     "Insufficient Credits",
			err:      store.ErrInsufficientCredits,
			expected: http.StatusPaymentRequired,
		},
		{
			name:     "Wrapped Insufficient Credits",
			err:      fmt.Errorf("spend credit: %w", store.ErrInsufficientCredits),
			expected: http.StatusPaymentRequired,
		},
		{
			name:     "Duplicate External ID",
			err:      store.ErrExternalIDExists,
			expected: http.StatusConflict,
		},
		{
			name:     "Invalid Entity",
			err:      store.ErrInvalidEntity,
			expected: http.StatusBadRequest,
		},
		{
			name:     "Domain Validation",
			err:      domain.ErrInvalidSubject,
			expected: http.StatusBadRequest,
		},
		{
			name:     "Unknown Error",
			err:      errors.New("connection reset"),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil Error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "User Not Found",
			err:      store.ErrUserNotFound,
			expected: "User not found",
		},
		{
			name:     "Lesson Not Found",
			err:      fmt.Errorf("get lesson: %w", store.ErrLessonNotFound),
			expected: "Lesson not found",
		},
		{
			name:     "Section Not Found",
			err:      store.ErrSectionNotFound,
			expected: "Section not found",
		},
		{
			name:     "Progress Not Found",
			err:      store.ErrProgressNotFound,
			expected: "Generation progress not found",
		},
		{
			name:     "Improve Job Not Found",
			err:      store.ErrImproveJobNotFound,
			expected: "Improvement job not found",
		},
		{
			name:     "Generic Not Found",
			err:      fmt.Errorf("lookup: %w", store.ErrNotFound),
			expected: "Resource not found",
		},
		{
			name:     "Insufficient Credits",
			err:      store.ErrInsufficientCredits,
			expected: "No generation credits remaining",
		},
		{
			name:     "Duplicate External ID",
			err:      store.ErrExternalIDExists,
			expected: "A user with this external ID already exists",
		},
		{
			name:     "Generic Duplicate",
			err:      fmt.Errorf("insert: %w", store.ErrDuplicate),
			expected: "Resource already exists",
		},
		{
			name:     "Invalid Entity",
			err:      store.ErrInvalidEntity,
			expected: "Invalid request data",
		},
		{
			name:     "Domain Validation Passes Through",
			err:      domain.ErrInvalidImproveMode,
			expected: domain.ErrInvalidImproveMode.Error(),
		},
		{
			name:     "Internal Error Is Hidden",
			err:      errors.New("pq: password authentication failed for user \"app\""),
			expected: "An internal error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}
