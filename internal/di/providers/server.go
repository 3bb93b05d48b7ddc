package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/locallibrary/internal/catalog"
	"github.com/listenupapp/locallibrary/internal/config"
	"github.com/listenupapp/locallibrary/internal/logger"
	"github.com/listenupapp/locallibrary/internal/ratelimit"
	"github.com/listenupapp/locallibrary/internal/web"
)

// RendererHandle wraps the template renderer with its watcher lifecycle.
type RendererHandle struct {
	*web.Renderer
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *RendererHandle) Shutdown() error {
	h.cancel()
	return h.Close()
}

// ProvideRenderer provides the page renderer. With TEMPLATE_DIR set the
// templates are read from disk and reloaded on change.
func ProvideRenderer(i do.Injector) (*RendererHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	renderer, err := web.NewRenderer(cfg.Server.TemplateDir, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := renderer.Watch(ctx); err != nil {
		log.Warn("Template hot reload unavailable", "error", err)
	}

	return &RendererHandle{Renderer: renderer, cancel: cancel}, nil
}

// RateLimiterHandle wraps the form submission limiter.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client form submission limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.Server.FormRateLimit, cfg.Server.FormRateBurst),
	}, nil
}

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	rendererHandle := do.MustInvoke[*RendererHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)
	cat := do.MustInvoke[*catalog.Catalog](i)

	handler := web.NewServer(web.Options{
		Catalog:        cat,
		Renderer:       rendererHandle.Renderer,
		Limiter:        limiterHandle.KeyedRateLimiter,
		Store:          storeHandle.Store,
		Index:          indexHandle.Index,
		RequestTimeout: cfg.Server.WriteTimeout,
		ShowErrors:     cfg.IsDevelopment(),
		Logger:         log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
