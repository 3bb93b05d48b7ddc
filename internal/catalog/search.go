package catalog

import (
	"context"
	"fmt"

	"github.com/listenupapp/locallibrary/internal/domain"
	domainerrors "github.com/listenupapp/locallibrary/internal/errors"
	"github.com/listenupapp/locallibrary/internal/search"
)

// Search serves full-text book search and keeps the index in step with the
// store.
type Search struct {
	deps *deps
}

// Query renders the books matching q.
func (s *Search) Query(ctx context.Context, q string) (*Result, error) {
	if s.deps.index == nil {
		return nil, domainerrors.NotImplemented("Search is not enabled")
	}

	res, err := s.deps.index.Search(ctx, search.Params{Query: q})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	return Render("search", View{
		"title":   "Search",
		"query":   q,
		"results": res,
	}), nil
}

// Reindex rebuilds the index from every stored book and returns how many
// were indexed.
func (s *Search) Reindex(ctx context.Context) (int, error) {
	d := s.deps
	if d.index == nil {
		return 0, nil
	}

	books, err := d.store.Books.Find(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.Document, 0, len(books))
	for _, b := range books {
		doc, err := d.bookDocument(ctx, b)
		if err != nil {
			return 0, err
		}
		docs = append(docs, doc)
	}

	if err := d.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	if err := d.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index books: %w", err)
	}

	d.logger.Info("search index rebuilt", "documents", len(docs))
	return len(docs), nil
}

// ReindexIfEmpty rebuilds the index when it holds nothing but the store
// has books, as after a fresh index or a mapping change.
func (s *Search) ReindexIfEmpty(ctx context.Context) error {
	d := s.deps
	if d.index == nil {
		return nil
	}

	docCount, err := d.index.DocumentCount()
	if err != nil || docCount > 0 {
		return err
	}
	bookCount, err := d.store.Books.Count(ctx)
	if err != nil || bookCount == 0 {
		return err
	}

	d.logger.Info("search index is empty but books exist, reindexing", "book_count", bookCount)
	_, err = s.Reindex(ctx)
	return err
}

func (d *deps) bookDocument(ctx context.Context, b *domain.Book) (*search.Document, error) {
	views, err := d.resolveBooks(ctx, []*domain.Book{b})
	if err != nil {
		return nil, fmt.Errorf("resolve book %s: %w", b.ID, err)
	}
	bv := views[0].(*BookView)
	return search.BookDocument(b, bv.Author, bv.Genres), nil
}
