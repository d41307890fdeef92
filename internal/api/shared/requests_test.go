package shared

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type createRequest struct {
		Title   string `json:"title"`
		Subject string `json:"subject"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost, "/api/lessons",
			bytes.NewBufferString(`{"title":"Fractions","subject":"math"}`))

		var got createRequest
		require.NoError(t, DecodeJSON(req, &got))
		assert.Equal(t, "Fractions", got.Title)
		assert.Equal(t, "math", got.Subject)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost, "/api/lessons",
			bytes.NewBufferString(`{"title":"Fractions",}`))

		var got createRequest
		err := DecodeJSON(req, &got)
		assert.ErrorContains(t, err, "invalid character")
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/lessons", bytes.NewBuffer(nil))

		var got createRequest
		err := DecodeJSON(req, &got)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("read failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/lessons", failingReader{})

		var got createRequest
		err := DecodeJSON(req, &got)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
