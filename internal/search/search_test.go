package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/locallibrary/internal/domain"
)

// setupTestIndex creates an on-disk search index in a temporary directory.
func setupTestIndex(t *testing.T) (*Index, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	index, err := NewIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	return index, func() { _ = index.Close() }
}

func seedBooks(t *testing.T, index *Index) {
	t.Helper()

	tolkien := &domain.Author{FirstName: "J.R.R.", FamilyName: "Tolkien"}
	austen := &domain.Author{FirstName: "Jane", FamilyName: "Austen"}
	fantasy := &domain.Genre{Name: "Fantasy"}
	romance := &domain.Genre{Name: "Romance"}

	docs := []*Document{
		BookDocument(&domain.Book{Record: domain.Record{ID: "book-1"}, Title: "The Hobbit", Summary: "A hobbit goes on an adventure.", ISBN: "9780261102217"}, tolkien, []*domain.Genre{fantasy}),
		BookDocument(&domain.Book{Record: domain.Record{ID: "book-2"}, Title: "The Fellowship of the Ring", Summary: "The ring must be destroyed.", ISBN: "9780261102354"}, tolkien, []*domain.Genre{fantasy}),
		BookDocument(&domain.Book{Record: domain.Record{ID: "book-3"}, Title: "Pride and Prejudice", Summary: "Elizabeth Bennet meets Mr Darcy.", ISBN: "9780141439518"}, austen, []*domain.Genre{romance}),
	}
	require.NoError(t, index.IndexDocuments(docs))
}

func TestNewIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewIndex_InMemory(t *testing.T) {
	index, err := NewIndex(Options{})
	require.NoError(t, err)
	defer func() { _ = index.Close() }()

	require.NoError(t, index.IndexDocument(&Document{ID: "book-1", Title: "Emma"}))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNewIndex_RebuildsOnVersionChange(t *testing.T) {
	dir := t.TempDir()

	index, err := NewIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexDocument(&Document{ID: "book-1", Title: "Emma"}))
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "search.version"), []byte("0"), 0o644))

	index, err = NewIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer func() { _ = index.Close() }()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Search(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	seedBooks(t, index)

	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"title word", "hobbit", "book-1"},
		{"author name", "austen", "book-3"},
		{"summary word", "destroyed", "book-2"},
		{"isbn", "9780141439518", "book-3"},
		{"title typo", "hobit", "book-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := index.Search(ctx, Params{Query: tt.query})
			require.NoError(t, err)
			require.NotEmpty(t, res.Hits)
			assert.Equal(t, tt.want, res.Hits[0].ID)
		})
	}
}

func TestIndex_SearchStoredFields(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	seedBooks(t, index)

	res, err := index.Search(context.Background(), Params{Query: "pride"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)

	hit := res.Hits[0]
	assert.Equal(t, "Pride and Prejudice", hit.Title)
	assert.Equal(t, "Jane Austen", hit.Author)
	assert.Equal(t, []string{"Romance"}, hit.Genres)
}

func TestIndex_EmptyQueryMatchesAll(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	seedBooks(t, index)

	res, err := index.Search(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
}

func TestIndex_DeleteAndRebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()
	seedBooks(t, index)

	require.NoError(t, index.DeleteDocument("book-1"))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	require.NoError(t, index.Rebuild())
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestBookDocument_Unescapes(t *testing.T) {
	book := &domain.Book{
		Record: domain.Record{ID: "book-9", CreatedAt: time.Unix(100, 0)},
		Title:  "Tom &amp; Jerry&#x27;s",
	}
	doc := BookDocument(book, nil, []*domain.Genre{nil, {Name: "Sci&#x2F;Fi"}})

	assert.Equal(t, "Tom & Jerry's", doc.Title)
	assert.Empty(t, doc.Author)
	assert.Equal(t, []string{"Sci/Fi"}, doc.Genres)
	assert.Equal(t, int64(100000), doc.CreatedAt)

	m := doc.ToMap()
	assert.NotContains(t, m, "summary")
	assert.Contains(t, m, "genres")
}
