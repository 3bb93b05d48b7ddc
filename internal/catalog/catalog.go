// Package catalog implements the library's request handlers: the dashboard
// and one generic resource handler set per record collection.
//
// Handlers are transport-agnostic. Each returns a Result naming a view and
// its data bag, or a redirect; internal/web turns that into HTTP.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/search"
	"github.com/listenupapp/locallibrary/internal/store"
	"github.com/listenupapp/locallibrary/internal/validation"
)

// View is the named data bag handed to a template.
type View map[string]any

// Result is a handler's response: a view to render or a redirect.
type Result struct {
	View     string
	Data     View
	Redirect string
}

// Render returns a result rendering view with data.
func Render(view string, data View) *Result {
	return &Result{View: view, Data: data}
}

// RedirectTo returns a result redirecting the client to url.
func RedirectTo(url string) *Result {
	return &Result{Redirect: url}
}

// Repository is the persistence contract a resource needs.
// *store.Collection satisfies it.
type Repository[T any] interface {
	Find(ctx context.Context) ([]*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, record *T) error
	Upsert(ctx context.Context, record *T) error
	Remove(ctx context.Context, id string) error
}

// Catalog bundles every handler group.
type Catalog struct {
	Dashboard     *Dashboard
	Books         *Resource[domain.Book, *domain.Book, BookInput]
	Authors       *Resource[domain.Author, *domain.Author, AuthorInput]
	Genres        *Resource[domain.Genre, *domain.Genre, GenreInput]
	BookInstances *Resource[domain.BookInstance, *domain.BookInstance, BookInstanceInput]
	Search        *Search
}

// Options configures a Catalog.
type Options struct {
	// QueryTimeout bounds each parallel fetch. Zero means no bound.
	QueryTimeout time.Duration
	Logger       *slog.Logger
	// Index is optional; without it search is unavailable and books are
	// not indexed.
	Index *search.Index
}

// New builds the catalog over s.
func New(s *store.Store, opts Options) *Catalog {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &deps{
		store:   s,
		index:   opts.Index,
		v:       validation.New(),
		logger:  logger,
		timeout: opts.QueryTimeout,
	}

	return &Catalog{
		Dashboard:     NewDashboard(s, opts.QueryTimeout),
		Books:         newBookResource(d),
		Authors:       newAuthorResource(d),
		Genres:        newGenreResource(d),
		BookInstances: newBookInstanceResource(d),
		Search:        &Search{deps: d},
	}
}

// deps is what the per-collection constructors share.
type deps struct {
	store   *store.Store
	index   *search.Index
	v       *validation.Validator
	logger  *slog.Logger
	timeout time.Duration
}
