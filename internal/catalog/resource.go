package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	domainerrors "github.com/listenupapp/locallibrary/internal/errors"
	"github.com/listenupapp/locallibrary/internal/form"
	"github.com/listenupapp/locallibrary/internal/parallel"
	"github.com/listenupapp/locallibrary/internal/store"
)

// Schema describes one collection to the generic handler set. T is the
// record type, PT its pointer carrying the store-managed fields, and I the
// form input it is built from.
type Schema[T any, PT store.Document[T], I any] struct {
	// Name prefixes view names and view keys ("book" gives "book_list",
	// "book_detail", "book_form", and the "book" key).
	Name string
	// Label names the collection in titles and stub messages.
	Label     string
	ListTitle string
	// NotFound is the message of the 404 raised for a missing record.
	NotFound string
	// Mutable enables update and delete; otherwise they are stubs.
	Mutable bool

	Repo     Repository[T]
	Pipeline *form.Pipeline[I, T]

	// Sort orders the list view in place.
	Sort func(records []*T)
	// Duplicate returns an existing record equivalent to a valid candidate.
	// Create then redirects to it instead of inserting.
	Duplicate func(ctx context.Context, candidate *T) (*T, error)
	// Lookup finds a record by URL key. Defaults to Repo.FindByID.
	Lookup func(ctx context.Context, key string) (*T, error)
	// Resolve turns records into view values with references populated,
	// keeping order.
	Resolve func(ctx context.Context, records []*T) ([]any, error)
	// DetailTitle titles the detail view of a resolved record.
	DetailTitle func(view any) string
	// Related schedules extra detail-view fetches for key alongside the
	// record fetch and returns a function copying their results into the
	// view.
	Related func(g *parallel.Group, key string) func(View) error
	// Options schedules the fetches of the option lists a form needs.
	Options func(g *parallel.Group) func(View) error
	// Prefill places a candidate or stored record into a form view.
	Prefill func(v View, record *T)
	// URL returns a record's canonical path.
	URL func(record *T) string
	// Created runs after a successful insert.
	Created func(ctx context.Context, record *T)
}

// Resource is the list/detail/create/update/delete handler set for one
// collection.
type Resource[T any, PT store.Document[T], I any] struct {
	schema  Schema[T, PT, I]
	logger  *slog.Logger
	timeout time.Duration
}

// NewResource creates a handler set from schema.
func NewResource[T any, PT store.Document[T], I any](schema Schema[T, PT, I], logger *slog.Logger, timeout time.Duration) *Resource[T, PT, I] {
	if schema.Lookup == nil {
		schema.Lookup = schema.Repo.FindByID
	}
	return &Resource[T, PT, I]{schema: schema, logger: logger, timeout: timeout}
}

// Name returns the collection name used in routes and views.
func (r *Resource[T, PT, I]) Name() string {
	return r.schema.Name
}

func (r *Resource[T, PT, I]) view(suffix string) string {
	return r.schema.Name + "_" + suffix
}

func (r *Resource[T, PT, I]) resolveOne(ctx context.Context, record *T) (any, error) {
	views, err := r.schema.Resolve(ctx, []*T{record})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// lookup finds the record for key, mapping a store miss to the schema's
// NotFound error.
func (r *Resource[T, PT, I]) lookup(ctx context.Context, key string) (*T, error) {
	record, err := r.schema.Lookup(ctx, key)
	if store.IsNotFound(err) {
		return nil, domainerrors.NotFound(r.schema.NotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", r.schema.Name, key, err)
	}
	return record, nil
}

// List renders every record, resolved and ordered. An empty collection
// renders an empty list.
func (r *Resource[T, PT, I]) List(ctx context.Context) (*Result, error) {
	records, err := r.schema.Repo.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Name, err)
	}
	if r.schema.Sort != nil {
		r.schema.Sort(records)
	}

	views, err := r.schema.Resolve(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("resolve %s list: %w", r.schema.Name, err)
	}

	return Render(r.view("list"), View{
		"title":        r.schema.ListTitle,
		r.view("list"): views,
	}), nil
}

// Detail renders one record with its references resolved. Related records
// are fetched in parallel with the record itself.
func (r *Resource[T, PT, I]) Detail(ctx context.Context, key string) (*Result, error) {
	g := parallel.New(ctx, r.timeout)

	main := parallel.Go(g, r.schema.Name, func(ctx context.Context) (any, error) {
		record, err := r.lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		return r.resolveOne(ctx, record)
	})

	var fill func(View) error
	if r.schema.Related != nil {
		fill = r.schema.Related(g, key)
	}

	_ = g.Wait()

	record, err := main.Get()
	if err != nil {
		return nil, err
	}

	data := View{r.schema.Name: record}
	if r.schema.DetailTitle != nil {
		data["title"] = r.schema.DetailTitle(record)
	}
	if fill != nil {
		if err := fill(data); err != nil {
			return nil, fmt.Errorf("load %s detail: %w", r.schema.Name, err)
		}
	}

	return Render(r.view("detail"), data), nil
}

func (r *Resource[T, PT, I]) options(ctx context.Context, data View) error {
	if r.schema.Options == nil {
		return nil
	}
	g := parallel.New(ctx, r.timeout)
	fill := r.schema.Options(g)
	_ = g.Wait()
	return fill(data)
}

// CreateForm renders a blank form with its option lists.
func (r *Resource[T, PT, I]) CreateForm(ctx context.Context) (*Result, error) {
	data := View{"title": "Create " + r.schema.Label}
	if err := r.options(ctx, data); err != nil {
		return nil, fmt.Errorf("load %s form options: %w", r.schema.Name, err)
	}
	return Render(r.view("form"), data), nil
}

// Create processes a submitted form. Invalid input re-renders the form with
// the sanitized values and error messages; valid input is inserted and the
// client redirected to the new record.
func (r *Resource[T, PT, I]) Create(ctx context.Context, values url.Values) (*Result, error) {
	sub, err := r.schema.Pipeline.Process(values)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "malformed form submission")
	}

	return form.Branch(sub,
		func(sub *form.Submission[I, T]) (*Result, error) {
			return r.rerender(ctx, "Create "+r.schema.Label, sub)
		},
		func(record *T) (*Result, error) {
			if r.schema.Duplicate != nil {
				existing, err := r.schema.Duplicate(ctx, record)
				if err != nil {
					return nil, fmt.Errorf("check duplicate %s: %w", r.schema.Name, err)
				}
				if existing != nil {
					return RedirectTo(r.schema.URL(existing)), nil
				}
			}
			if err := r.schema.Repo.Insert(ctx, record); err != nil {
				return nil, fmt.Errorf("create %s: %w", r.schema.Name, err)
			}
			target := r.schema.URL(record)
			r.logger.Info(r.schema.Name+" created", "url", target)
			if r.schema.Created != nil {
				r.schema.Created(ctx, record)
			}
			return RedirectTo(target), nil
		},
	)
}

func (r *Resource[T, PT, I]) rerender(ctx context.Context, title string, sub *form.Submission[I, T]) (*Result, error) {
	// "input" keeps what was typed for fields the candidate cannot carry,
	// such as a date that failed to parse.
	data := View{"title": title, "errors": sub.Errors, "input": sub.Input}
	if err := r.options(ctx, data); err != nil {
		return nil, fmt.Errorf("load %s form options: %w", r.schema.Name, err)
	}
	r.prefill(data, sub.Record)
	return Render(r.view("form"), data), nil
}

func (r *Resource[T, PT, I]) prefill(data View, record *T) {
	if r.schema.Prefill != nil {
		r.schema.Prefill(data, record)
		return
	}
	data[r.schema.Name] = record
}

func (r *Resource[T, PT, I]) stub(action string) error {
	return domainerrors.NotImplemented("NOT IMPLEMENTED: " + r.schema.Label + " " + action)
}

// UpdateForm renders the form pre-filled from the stored record, fetched in
// parallel with the option lists.
func (r *Resource[T, PT, I]) UpdateForm(ctx context.Context, key string) (*Result, error) {
	if !r.schema.Mutable {
		return nil, r.stub("update GET")
	}

	g := parallel.New(ctx, r.timeout)
	current := parallel.Go(g, r.schema.Name, func(ctx context.Context) (*T, error) {
		return r.lookup(ctx, key)
	})
	var fill func(View) error
	if r.schema.Options != nil {
		fill = r.schema.Options(g)
	}
	_ = g.Wait()

	record, err := current.Get()
	if err != nil {
		return nil, err
	}

	data := View{"title": "Update " + r.schema.Label}
	if fill != nil {
		if err := fill(data); err != nil {
			return nil, fmt.Errorf("load %s form options: %w", r.schema.Name, err)
		}
	}
	r.prefill(data, record)
	return Render(r.view("form"), data), nil
}

// Update processes an edit of the record at key. The candidate keeps the
// stored identity and replaces the record in place.
func (r *Resource[T, PT, I]) Update(ctx context.Context, key string, values url.Values) (*Result, error) {
	if !r.schema.Mutable {
		return nil, r.stub("update POST")
	}

	current, err := r.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	currentID := PT(current).Base().ID

	sub, err := r.schema.Pipeline.Process(values)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "malformed form submission")
	}
	PT(sub.Record).Base().ID = currentID

	return form.Branch(sub,
		func(sub *form.Submission[I, T]) (*Result, error) {
			return r.rerender(ctx, "Update "+r.schema.Label, sub)
		},
		func(record *T) (*Result, error) {
			if err := r.schema.Repo.Upsert(ctx, record); err != nil {
				return nil, fmt.Errorf("update %s: %w", r.schema.Name, err)
			}
			target := r.schema.URL(record)
			r.logger.Info(r.schema.Name+" updated", "url", target)
			return RedirectTo(target), nil
		},
	)
}

// DeleteForm renders the delete confirmation. A missing record renders the
// view without one.
func (r *Resource[T, PT, I]) DeleteForm(ctx context.Context, key string) (*Result, error) {
	if !r.schema.Mutable {
		return nil, r.stub("delete GET")
	}

	data := View{"title": "Delete " + r.schema.Label, r.schema.Name: nil}

	record, err := r.schema.Lookup(ctx, key)
	switch {
	case store.IsNotFound(err):
	case err != nil:
		return nil, fmt.Errorf("find %s %s: %w", r.schema.Name, key, err)
	default:
		v, err := r.resolveOne(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", r.schema.Name, err)
		}
		data[r.schema.Name] = v
	}

	return Render(r.view("delete"), data), nil
}

// Delete removes the record whose identity is in the body field
// "<name>id", then redirects to the list whether or not it existed.
func (r *Resource[T, PT, I]) Delete(ctx context.Context, _ string, values url.Values) (*Result, error) {
	if !r.schema.Mutable {
		return nil, r.stub("delete POST")
	}

	recordID := values.Get(r.schema.Name + "id")
	if recordID != "" {
		if err := r.schema.Repo.Remove(ctx, recordID); err != nil {
			return nil, fmt.Errorf("delete %s: %w", r.schema.Name, err)
		}
		r.logger.Info(r.schema.Name+" deleted", "id", recordID)
	}

	return RedirectTo("/catalog/" + r.schema.Name + "s"), nil
}
