package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/locallibrary/internal/errors"
	"github.com/listenupapp/locallibrary/internal/store"
)

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	data := map[string]string{"status": "healthy"}
	JSON(w, http.StatusOK, data, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_Error(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"}, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var result Envelope
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.False(t, result.Success, "Success should be false for status >= 400")
}

func TestHTML(t *testing.T) {
	w := httptest.NewRecorder()

	HTML(w, http.StatusNotFound, []byte("<h1>Not found</h1>"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>Not found</h1>", w.Body.String())
}

func TestText(t *testing.T) {
	w := httptest.NewRecorder()

	Text(w, http.StatusNotImplemented, "NOT IMPLEMENTED: Book delete GET")

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "NOT IMPLEMENTED: Book delete GET", w.Body.String())
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"domain not found", domainerrors.NotFound("Book not found"), http.StatusNotFound},
		{"wrapped domain not found", fmt.Errorf("detail: %w", domainerrors.NotFound("Book not found")), http.StatusNotFound},
		{"not implemented", domainerrors.NotImplemented("NOT IMPLEMENTED: Genre update GET"), http.StatusNotImplemented},
		{"validation", domainerrors.Validation("malformed form submission"), http.StatusBadRequest},
		{"store not found", store.ErrNotFound, http.StatusNotFound},
		{"store conflict", fmt.Errorf("insert: %w", store.ErrAlreadyExists), http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Book not found", MessageOf(fmt.Errorf("x: %w", domainerrors.NotFound("Book not found"))))
	assert.Equal(t, "record not found", MessageOf(store.ErrNotFound))
	assert.Equal(t, "Internal Server Error", MessageOf(errors.New("badger: value log corrupt")))
}
