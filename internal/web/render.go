package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/listenupapp/locallibrary/internal/domain"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

//go:embed static
var staticFiles embed.FS

const layoutFile = "layout.html"

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 100 * time.Millisecond

var funcs = template.FuncMap{
	// Stored text is markup-escaped on the way in; text undoes that so
	// html/template escapes it exactly once on the way out.
	"text":        html.UnescapeString,
	"statusClass": statusClass,
}

// statusClass picks the stylesheet class for a copy's status.
func statusClass(s domain.Status) string {
	switch s {
	case domain.StatusAvailable:
		return "status-available"
	case domain.StatusMaintenance:
		return "status-maintenance"
	default:
		return "status-other"
	}
}

// Renderer executes named views inside the shared layout.
type Renderer struct {
	fsys   fs.FS
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	views map[string]*template.Template

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewRenderer parses the templates in dir, or the embedded set when dir is
// empty.
func NewRenderer(dir string, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Renderer{dir: dir, logger: logger}
	if dir == "" {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		r.fsys = sub
	} else {
		r.fsys = os.DirFS(dir)
	}

	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// load parses every view against the layout and swaps the set in whole.
func (r *Renderer) load() error {
	names, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	views := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(layoutFile).Funcs(funcs).ParseFS(r.fsys, layoutFile, name)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		views[strings.TrimSuffix(name, path.Ext(name))] = t
	}

	r.mu.Lock()
	r.views = views
	r.mu.Unlock()
	return nil
}

// Render executes view with data and returns the page. Nothing is written
// on failure, so callers can still send an error page.
func (r *Renderer) Render(view string, data any) ([]byte, error) {
	r.mu.RLock()
	t, ok := r.views[view]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown view %q", view)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", view, err)
	}
	return buf.Bytes(), nil
}

// Watch reloads the templates whenever a file in the template directory
// changes, until ctx ends or Close is called. It is a no-op for the
// embedded set. A failed reload keeps the previous templates.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}

	r.watcher = watcher
	r.done = make(chan struct{})
	r.wg.Add(1)
	go r.processEvents(ctx)

	r.logger.Info("Watching templates for changes", "dir", r.dir)
	return nil
}

func (r *Renderer) processEvents(ctx context.Context) {
	defer r.wg.Done()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending = time.After(reloadDelay)
			}
		case <-pending:
			pending = nil
			if err := r.load(); err != nil {
				r.logger.Error("Template reload failed", "error", err)
				continue
			}
			r.logger.Info("Templates reloaded", "dir", r.dir)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("Template watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (r *Renderer) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	err := r.watcher.Close()
	r.wg.Wait()
	r.watcher = nil
	return err
}
