package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter_EmitEvent(t *testing.T) {
	logger := slog.Default()

	t.Run("delivers to every registered handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first := &MockEventHandler{}
		second := &MockEventHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event, err := NewEntityTaskRequestEvent("lesson_generation", uuid.New())
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		require.NoError(t, err)

		assert.Equal(t, 1, first.HandledCount)
		assert.Equal(t, 1, second.HandledCount)
		assert.Equal(t, event, first.LastEvent)
		assert.Equal(t, event, second.LastEvent)
	})

	t.Run("succeeds with no handlers registered", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		event, err := NewEntityTaskRequestEvent("section_improvement", uuid.New())
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("a failing handler does not block the others", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handlerErr := errors.New("task store unavailable")
		failing := &MockEventHandler{HandlerError: handlerErr}
		healthy := &MockEventHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		event, err := NewEntityTaskRequestEvent("lesson_generation", uuid.New())
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, handlerErr)
		assert.Equal(t, 1, healthy.HandledCount)
	})

	t.Run("joins the errors of all failed handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		firstErr := errors.New("queue insert failed")
		secondErr := errors.New("handler shutting down")
		emitter.RegisterHandler(&MockEventHandler{HandlerError: firstErr})
		emitter.RegisterHandler(&MockEventHandler{HandlerError: secondErr})

		event, err := NewEntityTaskRequestEvent("section_improvement", uuid.New())
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, firstErr)
		assert.ErrorIs(t, err, secondErr)
	})
}

func TestInMemoryEventEmitter_RegisterHandler(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.Default())

	handler := &MockEventHandler{}
	emitter.RegisterHandler(handler)
	emitter.RegisterHandler(handler)

	event, err := NewEntityTaskRequestEvent("lesson_generation", uuid.New())
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Equal(t, 2, handler.HandledCount)
}
