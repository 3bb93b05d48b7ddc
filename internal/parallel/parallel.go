// Package parallel runs independent reads concurrently and waits for all of
// them, keeping each branch's result and error separate.
//
// Usage:
//
//	g := parallel.New(ctx, 5*time.Second)
//	book := parallel.Go(g, "book", func(ctx context.Context) (*domain.Book, error) { ... })
//	copies := parallel.Go(g, "copies", func(ctx context.Context) ([]*domain.BookInstance, error) { ... })
//	err := g.Wait() // joined *BranchError values, nil when every branch succeeded
//	b, bErr := book.Get()
package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BranchError records which branch of a join failed.
type BranchError struct {
	Name string
	Err  error
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *BranchError) Unwrap() error { return e.Err }

// settler is the type-erased view of a Future the group needs.
type settler interface {
	name() string
	abandon(err error)
	result() error
}

// Group is a fan-out/join barrier. A failing branch does not cancel its
// siblings; every branch runs to completion or until the group deadline.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	eg     errgroup.Group

	mu       sync.Mutex
	branches []settler
}

// New creates a group whose branches share a context derived from ctx. A
// positive timeout bounds the whole join.
func New(ctx context.Context, timeout time.Duration) *Group {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	return &Group{ctx: ctx, cancel: cancel}
}

// Future holds the outcome of one branch.
type Future[T any] struct {
	label string

	mu    sync.Mutex
	done  bool
	value T
	err   error
}

func (f *Future[T]) name() string { return f.label }

func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return
	}
	f.value, f.err, f.done = v, err, true
}

func (f *Future[T]) abandon(err error) {
	var zero T
	f.settle(zero, err)
}

func (f *Future[T]) result() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Get returns the branch value and error. Only meaningful after Wait.
func (f *Future[T]) Get() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Value returns the branch value, the zero value if the branch failed.
func (f *Future[T]) Value() T {
	v, _ := f.Get()
	return v
}

// Go starts fn as a named branch of g.
func Go[T any](g *Group, name string, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{label: name}

	g.mu.Lock()
	g.branches = append(g.branches, f)
	g.mu.Unlock()

	g.eg.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				f.abandon(fmt.Errorf("panic: %v", r))
			}
		}()
		v, err := fn(g.ctx)
		f.settle(v, err)
		return nil
	})

	return f
}

// Wait blocks until every branch has finished or the group deadline passes.
// Branches still running at the deadline are settled with the context error.
// The returned error joins one *BranchError per failed branch, in launch
// order.
func (g *Group) Wait() error {
	defer g.cancel()

	done := make(chan struct{})
	go func() {
		_ = g.eg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-g.ctx.Done():
		// Let branches that finished in the same instant settle first.
		select {
		case <-done:
		default:
		}
	}

	g.mu.Lock()
	branches := g.branches
	g.mu.Unlock()

	var errs []error
	for _, b := range branches {
		if g.ctx.Err() != nil {
			b.abandon(g.ctx.Err())
		}
		if err := b.result(); err != nil {
			errs = append(errs, &BranchError{Name: b.name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// Failed returns the names of the branches whose error is non-nil.
func Failed(err error) []string {
	var names []string
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var be *BranchError
			if errors.As(e, &be) {
				names = append(names, be.Name)
			}
		}
		return names
	}
	var be *BranchError
	if errors.As(err, &be) {
		names = append(names, be.Name)
	}
	return names
}
