package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctxWithTrace := SetTraceID(ctx)
	traceID := GetTraceID(ctxWithTrace)
	assert.Len(t, traceID, 32)

	// The parent context stays untouched
	assert.Empty(t, GetTraceID(ctx))
}

func TestGetTraceID_WrongValueType(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestGenerateTraceID(t *testing.T) {
	const iterations = 1000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := generateTraceID()
		require.Len(t, id, 32)

		_, err := hex.DecodeString(id)
		require.NoError(t, err)

		assert.False(t, seen[id], "trace IDs must be unique")
		seen[id] = true
	}
}

func TestGenerateFallbackTraceID(t *testing.T) {
	const iterations = 100
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := generateFallbackTraceID()
		require.Len(t, id, 32)

		_, err := hex.DecodeString(id)
		require.NoError(t, err)

		// The counter component keeps same-nanosecond IDs distinct
		assert.False(t, seen[id], "fallback trace IDs must be unique")
		seen[id] = true
	}
}
