// Package store persists catalog records as JSON documents in Badger.
package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/locallibrary/internal/domain"
)

// Key prefixes, one per collection.
const (
	prefixAuthor       = "author:"
	prefixGenre        = "genre:"
	prefixBook         = "book:"
	prefixBookInstance = "bookinstance:"
)

// Index names.
const (
	IndexAuthor = "author"
	IndexGenre  = "genre"
	IndexName   = "name"
	IndexBook   = "book"
	IndexStatus = "status"
)

// Store wraps a Badger database instance and exposes one collection per
// record type.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Authors       *Collection[domain.Author, *domain.Author]
	Genres        *Collection[domain.Genre, *domain.Genre]
	Books         *Collection[domain.Book, *domain.Book]
	BookInstances *Collection[domain.BookInstance, *domain.BookInstance]
}

// New opens the Badger database at path. An empty path opens an in-memory
// database, which tests use.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil // Badger's internal logging is too chatty

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}
	s.initCollections()

	if logger != nil {
		logger.Info("Badger database opened", "path", path, "in_memory", path == "")
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// initCollections registers the four catalog collections and their indexes.
// Reference integrity is not enforced: indexes only make lookups by
// reference cheap.
func (s *Store) initCollections() {
	s.Authors = NewCollection[domain.Author](s, prefixAuthor, "author")

	s.Genres = NewCollection[domain.Genre](s, prefixGenre, "genre")
	s.Genres.entity.WithIndex(IndexName, func(g *domain.Genre) []string {
		return []string{g.Name}
	})

	s.Books = NewCollection[domain.Book](s, prefixBook, "book")
	s.Books.entity.
		WithIndex(IndexAuthor, func(b *domain.Book) []string {
			if b.AuthorID == "" {
				return nil
			}
			return []string{b.AuthorID}
		}).
		WithIndex(IndexGenre, func(b *domain.Book) []string {
			return b.GenreIDs
		})

	s.BookInstances = NewCollection[domain.BookInstance](s, prefixBookInstance, "copy")
	s.BookInstances.entity.
		WithIndex(IndexBook, func(bi *domain.BookInstance) []string {
			return []string{bi.BookID}
		}).
		WithIndex(IndexStatus, func(bi *domain.BookInstance) []string {
			return []string{string(bi.Status)}
		})
}
