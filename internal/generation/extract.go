package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON recovers a single JSON value embedded in free-form model
// output. It slices from the first '{' to the last '}' and unmarshals the
// result, so surrounding prose, markdown fences, or trailing commentary are
// tolerated. Returns ErrNoJSONFound when the text contains no such span,
// and a wrapped parse error when the span is not valid JSON.
//
// The decoded value is whatever the JSON encodes: usually a
// map[string]any, but a quoted payload decodes to a string. Callers decide
// how to handle non-object shapes.
func ExtractJSON(text string) (any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSONFound
	}

	var value any
	if err := json.Unmarshal([]byte(text[start:end+1]), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSONFound, err)
	}

	return value, nil
}
