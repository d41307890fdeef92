package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	t.Run("bare object", func(t *testing.T) {
		t.Parallel()

		value, err := ExtractJSON(`{"title": "Intro", "has_task": true}`)
		require.NoError(t, err)

		obj, ok := value.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Intro", obj["title"])
		assert.Equal(t, true, obj["has_task"])
	})

	t.Run("object surrounded by prose and fences", func(t *testing.T) {
		t.Parallel()

		text := "Sure! Here is the JSON you asked for:\n```json\n" +
			`{"sections": [{"section_topic": "Basics"}]}` +
			"\n```\nLet me know if you need anything else."

		value, err := ExtractJSON(text)
		require.NoError(t, err)
		assert.IsType(t, map[string]any{}, value)
	})

	t.Run("nested braces resolve to the outermost object", func(t *testing.T) {
		t.Parallel()

		value, err := ExtractJSON(`noise {"a": {"b": {"c": 1}}} trailing`)
		require.NoError(t, err)

		obj := value.(map[string]any)
		assert.Contains(t, obj, "a")
	})

	t.Run("no braces at all", func(t *testing.T) {
		t.Parallel()

		_, err := ExtractJSON("I could not produce anything structured today.")
		assert.ErrorIs(t, err, ErrNoJSONFound)
	})

	t.Run("only a closing brace before an opening one", func(t *testing.T) {
		t.Parallel()

		_, err := ExtractJSON("} nothing here {")
		assert.ErrorIs(t, err, ErrNoJSONFound)
	})

	t.Run("braces around invalid JSON", func(t *testing.T) {
		t.Parallel()

		_, err := ExtractJSON("{this is not json}")
		assert.ErrorIs(t, err, ErrNoJSONFound)
	})

	t.Run("double-encoded payload decodes to a string", func(t *testing.T) {
		t.Parallel()

		// The extractor slices from '{' so a quoted object still parses,
		// but as a string value; the dispatcher re-parses it.
		value, err := ExtractJSON(`{"improved_content": "text"}`)
		require.NoError(t, err)
		assert.IsType(t, map[string]any{}, value)
	})
}
