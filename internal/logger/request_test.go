package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRequests_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, `"level":"INFO"`},
		{http.StatusNotFound, `"level":"WARN"`},
		{http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Format: "json", Writer: &buf})

			r := chi.NewRouter()
			r.Use(middleware.RequestID)
			r.Use(Requests(log.Logger))
			r.Get("/catalog/books", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/books", nil))

			out := buf.String()
			assert.Contains(t, out, `"msg":"Request completed"`)
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, `"path":"/catalog/books"`)
			assert.Contains(t, out, `"method":"GET"`)
			assert.Contains(t, out, `"request_id":`)
		})
	}
}

func TestRequests_Panic(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Writer: &buf})

	r := chi.NewRouter()
	r.Use(Requests(log.Logger))
	r.Use(middleware.Recoverer)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("template exploded")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"msg":"Request panicked"`)
	assert.Contains(t, buf.String(), `"panic":"template exploded"`)
}
