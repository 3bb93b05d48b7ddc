package catalog

import (
	"context"
	"time"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/parallel"
	"github.com/listenupapp/locallibrary/internal/store"
)

// countQuery is one independent count shown on the dashboard.
type countQuery struct {
	name  string
	count func(ctx context.Context) (int, error)
}

// Dashboard renders the catalog summary counts.
type Dashboard struct {
	queries []countQuery
	timeout time.Duration
}

// NewDashboard creates the dashboard over s's collections.
func NewDashboard(s *store.Store, timeout time.Duration) *Dashboard {
	return &Dashboard{
		queries: []countQuery{
			{"book_count", s.Books.Count},
			{"book_instance_count", s.BookInstances.Count},
			{"book_instance_available_count", func(ctx context.Context) (int, error) {
				return s.BookInstances.CountBy(ctx, store.IndexStatus, string(domain.StatusAvailable))
			}},
			{"author_count", s.Authors.Count},
			{"genre_count", s.Genres.Count},
		},
		timeout: timeout,
	}
}

// Index runs every count concurrently and renders whatever succeeded. A
// failed count is absent from "data", flagged in "failed", and its error
// joined into "error"; the page still renders.
func (d *Dashboard) Index(ctx context.Context) (*Result, error) {
	g := parallel.New(ctx, d.timeout)

	futures := make([]*parallel.Future[int], len(d.queries))
	for i, q := range d.queries {
		futures[i] = parallel.Go(g, q.name, q.count)
	}
	err := g.Wait()

	failed := make(map[string]bool)
	for _, name := range parallel.Failed(err) {
		failed[name] = true
	}

	data := make(map[string]any, len(d.queries))
	for i, f := range futures {
		if name := d.queries[i].name; !failed[name] {
			data[name] = f.Value()
		}
	}

	return Render("index", View{
		"title":  "Local Library Home",
		"error":  err,
		"data":   data,
		"failed": failed,
	}), nil
}
