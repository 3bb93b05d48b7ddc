// Package web serves the catalog over HTTP as server-rendered pages.
package web

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/listenupapp/locallibrary/internal/catalog"
	"github.com/listenupapp/locallibrary/internal/logger"
	"github.com/listenupapp/locallibrary/internal/ratelimit"
	"github.com/listenupapp/locallibrary/internal/search"
	"github.com/listenupapp/locallibrary/internal/store"
)

// maxFormBytes caps a submitted form body.
const maxFormBytes = 1 << 20

// resource is the handler set mounted under /catalog/<name>.
// *catalog.Resource satisfies it for every collection.
type resource interface {
	Name() string
	List(ctx context.Context) (*catalog.Result, error)
	Detail(ctx context.Context, key string) (*catalog.Result, error)
	CreateForm(ctx context.Context) (*catalog.Result, error)
	Create(ctx context.Context, values url.Values) (*catalog.Result, error)
	UpdateForm(ctx context.Context, key string) (*catalog.Result, error)
	Update(ctx context.Context, key string, values url.Values) (*catalog.Result, error)
	DeleteForm(ctx context.Context, key string) (*catalog.Result, error)
	Delete(ctx context.Context, key string, values url.Values) (*catalog.Result, error)
}

// Options configures a Server.
type Options struct {
	Catalog  *catalog.Catalog
	Renderer *Renderer
	// Limiter throttles form submissions per client. Nil disables it.
	Limiter *ratelimit.KeyedRateLimiter
	// Store and Index are probed by the health check. Either may be nil.
	Store *store.Store
	Index *search.Index
	// RequestTimeout bounds a whole request. Zero means no bound.
	RequestTimeout time.Duration
	// ShowErrors puts internal error text on error pages.
	ShowErrors bool
	Logger     *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog    *catalog.Catalog
	renderer   *Renderer
	limiter    *ratelimit.KeyedRateLimiter
	store      *store.Store
	index      *search.Index
	timeout    time.Duration
	showErrors bool
	router     *chi.Mux
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		catalog:    opts.Catalog,
		renderer:   opts.Renderer,
		limiter:    opts.Limiter,
		store:      opts.Store,
		index:      opts.Index,
		timeout:    opts.RequestTimeout,
		showErrors: opts.ShowErrors,
		router:     chi.NewRouter(),
		logger:     log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.Requests(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.timeout > 0 {
		s.router.Use(middleware.Timeout(s.timeout))
	}
	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog", http.StatusFound)
	})
	s.router.Get("/healthz", s.handleHealth)

	static, _ := fs.Sub(staticFiles, "static")
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	s.router.Route("/catalog", func(r chi.Router) {
		r.Get("/", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return s.catalog.Dashboard.Index(req.Context())
		}))
		r.Get("/search", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return s.catalog.Search.Query(req.Context(), req.URL.Query().Get("q"))
		}))

		s.mount(r, s.catalog.Books)
		s.mount(r, s.catalog.Authors)
		s.mount(r, s.catalog.Genres)
		s.mount(r, s.catalog.BookInstances)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Not Found", "")
	})
}

// mount registers the list, detail, create, update and delete routes of
// res. The create routes are registered before the detail route so that
// "create" is never taken for a key.
func (s *Server) mount(r chi.Router, res resource) {
	name := res.Name()

	r.Get("/"+name+"s", s.handle(func(req *http.Request) (*catalog.Result, error) {
		return res.List(req.Context())
	}))

	r.Route("/"+name, func(r chi.Router) {
		r.Get("/create", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return res.CreateForm(req.Context())
		}))
		r.Post("/create", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return res.Create(req.Context(), req.PostForm)
		}))

		r.Get("/{id}", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return res.Detail(req.Context(), routeKey(req))
		}))
		r.Get("/{id}/update", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return res.UpdateForm(req.Context(), routeKey(req))
		}))
		r.Post("/{id}/update", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return res.Update(req.Context(), routeKey(req), req.PostForm)
		}))
		r.Get("/{id}/delete", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return res.DeleteForm(req.Context(), routeKey(req))
		}))
		r.Post("/{id}/delete", s.handle(func(req *http.Request) (*catalog.Result, error) {
			return res.Delete(req.Context(), routeKey(req), req.PostForm)
		}))
	})
}

// routeKey returns the decoded {id} segment. chi matches on RawPath when the
// request carries one, leaving the parameter escaped; otherwise it is
// already decoded and must not be unescaped again.
func routeKey(r *http.Request) string {
	key := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return key
	}
	if decoded, err := url.PathUnescape(key); err == nil {
		return decoded
	}
	return key
}
