package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/listenupapp/locallibrary/internal/catalog"
	domainerrors "github.com/listenupapp/locallibrary/internal/errors"
	"github.com/listenupapp/locallibrary/internal/http/response"
)

// action is a catalog call bound to a request.
type action func(r *http.Request) (*catalog.Result, error)

// handle adapts an action to HTTP. POST bodies are parsed into
// r.PostForm first; results become pages or redirects and errors become
// error pages.
func (s *Server) handle(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			if err := r.ParseForm(); err != nil {
				s.handleError(w, r, domainerrors.Wrap(err, domainerrors.CodeValidation, "malformed form submission"))
				return
			}
		}

		res, err := fn(r)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.writeResult(w, r, res)
	}
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res *catalog.Result) {
	if res.Redirect != "" {
		http.Redirect(w, r, res.Redirect, http.StatusFound)
		return
	}

	page, err := s.renderer.Render(res.View, res.Data)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	response.HTML(w, http.StatusOK, page)
}

// handleError is the boundary for every failed request. Unimplemented
// actions answer with their plain-text message; everything else gets the
// error page with the error's status.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := response.StatusOf(err)

	logArgs := []any{
		"error", err,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", logArgs...)
	} else {
		s.logger.Warn("Request failed", logArgs...)
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeNotImplemented {
		response.Text(w, status, domainErr.Message)
		return
	}

	detail := ""
	if s.showErrors {
		detail = err.Error()
	}
	s.renderError(w, r, status, response.MessageOf(err), detail)
}

// renderError writes the error page, falling back to plain text when the
// page itself cannot be rendered.
func (s *Server) renderError(w http.ResponseWriter, _ *http.Request, status int, message, detail string) {
	page, err := s.renderer.Render("error", catalog.View{
		"title":   message,
		"message": message,
		"status":  status,
		"detail":  detail,
	})
	if err != nil {
		s.logger.Error("Failed to render error page", "error", err)
		response.Text(w, status, message)
		return
	}
	response.HTML(w, status, page)
}
