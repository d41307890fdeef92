package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs swaps the default logger for one writing into the returned
// builder, restoring the original when the test ends.
func captureLogs(t *testing.T) *strings.Builder {
	t.Helper()

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	old := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(old) })

	return &buf
}

func TestRespondWithJSON(t *testing.T) {
	t.Run("writes status, header and body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
		w := httptest.NewRecorder()

		RespondWithJSON(w, req, http.StatusAccepted, map[string]interface{}{
			"status": "pending",
			"total":  8,
		})

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, float64(8), body["total"])
	})

	t.Run("logs encoding failures after the header is written", func(t *testing.T) {
		logBuf := captureLogs(t)

		req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
		w := httptest.NewRecorder()

		// A cyclic value cannot be encoded
		type cyclic struct{ Self *cyclic }
		data := &cyclic{}
		data.Self = data

		RespondWithJSON(w, req, http.StatusOK, data)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, logBuf.String(), "failed to encode JSON response")
	})
}

func TestRespondWithError(t *testing.T) {
	t.Run("includes the trace ID from the context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), TraceIDKey, "trace-abc")
		req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		RespondWithError(w, req, http.StatusBadRequest, "Invalid lesson ID")

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid lesson ID", resp.Error)
		assert.Equal(t, "trace-abc", resp.TraceID)
	})

	t.Run("omits the trace ID when the context has none", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
		w := httptest.NewRecorder()

		RespondWithError(w, req, http.StatusNotFound, "Lesson not found")

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Lesson not found", resp.Error)
		assert.Empty(t, resp.TraceID)
	})
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name             string
		statusCode       int
		message          string
		err              error
		expectedLogLevel string
	}{
		{
			name:             "server error logs at ERROR",
			statusCode:       http.StatusInternalServerError,
			message:          "An internal error occurred",
			err:              errors.New("database connection failed"),
			expectedLogLevel: "ERROR",
		},
		{
			name:             "not found logs at DEBUG",
			statusCode:       http.StatusNotFound,
			message:          "Lesson not found",
			err:              errors.New("entity not found: lesson"),
			expectedLogLevel: "DEBUG",
		},
		{
			name:             "credit exhaustion logs at DEBUG",
			statusCode:       http.StatusPaymentRequired,
			message:          "No generation credits remaining",
			err:              errors.New("insufficient generation credits"),
			expectedLogLevel: "DEBUG",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logBuf := captureLogs(t)

			ctx := context.WithValue(context.Background(), TraceIDKey, "trace-abc")
			req := httptest.NewRequest(http.MethodPost, "/api/lessons", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err)

			assert.Equal(t, tc.statusCode, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.message, resp.Error)
			assert.Equal(t, "trace-abc", resp.TraceID)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, tc.expectedLogLevel)
			assert.Contains(t, logOutput, tc.message)
			assert.Contains(t, logOutput, "trace_id=trace-abc")
			assert.Contains(t, logOutput, "error_type=")
		})
	}

	t.Run("raw error text stays out of the response body", func(t *testing.T) {
		captureLogs(t)

		req := httptest.NewRequest(http.MethodPost, "/api/lessons", nil)
		w := httptest.NewRecorder()

		err := errors.New("pq: connect to postgres://app:hunter2@db:5432/prod failed")
		RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An internal error occurred", err)

		assert.NotContains(t, w.Body.String(), "hunter2")
		assert.NotContains(t, w.Body.String(), "postgres://")
	})
}
