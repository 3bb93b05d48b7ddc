package web

import (
	"context"
	"net/http"
	"time"

	"github.com/listenupapp/locallibrary/internal/http/response"
)

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

// handleHealth reports store and search index health. Only an unhealthy
// store fails the check; search is optional.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := map[string]ComponentHealth{
		"database": s.checkDatabase(r.Context()),
		"search":   s.checkSearchIndex(),
	}

	overall := "healthy"
	status := http.StatusOK
	switch {
	case components["database"].Status == "unhealthy":
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	case components["search"].Status != "healthy":
		overall = "degraded"
	}

	response.JSON(w, status, HealthResponse{Status: overall, Components: components}, s.logger)
}

// checkDatabase verifies Badger is readable.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: "unhealthy", Message: "database not configured"}
	}

	start := time.Now()
	_, err := s.store.Genres.Count(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database read failed",
		}
	}
	return ComponentHealth{Status: "healthy", Latency: latency.String()}
}

// checkSearchIndex verifies the Bleve index is accessible.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.index == nil {
		return ComponentHealth{Status: "degraded", Message: "search not enabled"}
	}

	start := time.Now()
	_, err := s.index.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}
	return ComponentHealth{Status: "healthy", Latency: latency.String()}
}
