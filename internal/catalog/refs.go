package catalog

import (
	"context"
	"html"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/listenupapp/locallibrary/internal/store"
)

// refs memoizes reference lookups within one request. A dangling reference
// resolves to nil.
type refs[T any] struct {
	find  func(ctx context.Context, id string) (*T, error)
	cache map[string]*T
}

func newRefs[T any](find func(ctx context.Context, id string) (*T, error)) *refs[T] {
	return &refs[T]{find: find, cache: make(map[string]*T)}
}

func (r *refs[T]) get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	if v, ok := r.cache[id]; ok {
		return v, nil
	}
	v, err := r.find(ctx, id)
	if store.IsNotFound(err) {
		v, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.cache[id] = v
	return v, nil
}

// sortByText returns a sorter ordering records by the unescaped text key
// under English collation. Collators are not safe for concurrent use, so
// each call builds its own.
func sortByText[T any](keys ...func(*T) string) func([]*T) {
	return func(records []*T) {
		c := collate.New(language.English, collate.Loose)
		slices.SortStableFunc(records, func(a, b *T) int {
			for _, key := range keys {
				if n := c.CompareString(html.UnescapeString(key(a)), html.UnescapeString(key(b))); n != 0 {
					return n
				}
			}
			return 0
		})
	}
}

// identity passes records through as view values.
func identity[T any](_ context.Context, records []*T) ([]any, error) {
	views := make([]any, len(records))
	for i, r := range records {
		views[i] = r
	}
	return views, nil
}
