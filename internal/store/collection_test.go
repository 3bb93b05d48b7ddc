package store_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/store"
)

func TestCollection_InsertAssignsIdentity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	author := &domain.Author{FirstName: "Jane", FamilyName: "Austen"}
	require.NoError(t, s.Authors.Insert(ctx, author))

	assert.True(t, strings.HasPrefix(author.ID, "author-"))
	assert.False(t, author.CreatedAt.IsZero())
	assert.Equal(t, "/catalog/author/"+author.ID, author.URL())

	got, err := s.Authors.FindByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Austen, Jane", got.FullName())
}

func TestCollection_InsertIgnoresCallerIdentity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	genre := &domain.Genre{Record: domain.Record{ID: "genre-chosen-by-client"}, Name: "Fiction"}
	require.NoError(t, s.Genres.Insert(ctx, genre))

	assert.NotEqual(t, "genre-chosen-by-client", genre.ID)
	assert.Equal(t, "/catalog/genre/Fiction", genre.URL())
}

func TestCollection_FindByID_MalformedOrMissing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.Books.FindByID(ctx, "not-an-id")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Books.FindByID(ctx, "book-"+strings.Repeat("x", 21))
	require.ErrorIs(t, err, store.ErrNotFound)

	// A well-formed id from another collection is not found either.
	_, err = s.BookInstances.FindByID(ctx, "book-"+strings.Repeat("x", 21))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCollection_UpsertKeepsIdentityAndCreatedAt(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	bi := domain.NewBookInstance("book-1", "First imprint", domain.StatusAvailable, nil)
	require.NoError(t, s.BookInstances.Insert(ctx, bi))
	originalID := bi.ID
	originalCreated := bi.CreatedAt

	time.Sleep(2 * time.Millisecond)

	replacement := domain.NewBookInstance("book-1", "Second imprint", domain.StatusLoaned, nil)
	replacement.ID = originalID
	require.NoError(t, s.BookInstances.Upsert(ctx, replacement))

	got, err := s.BookInstances.FindByID(ctx, originalID)
	require.NoError(t, err)
	assert.Equal(t, originalID, got.ID)
	assert.Equal(t, "Second imprint", got.Imprint)
	assert.Equal(t, domain.StatusLoaned, got.Status)
	assert.True(t, got.CreatedAt.Equal(originalCreated))
	assert.True(t, got.UpdatedAt.After(originalCreated))

	n, err := s.BookInstances.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	available, err := s.BookInstances.CountBy(ctx, store.IndexStatus, string(domain.StatusAvailable))
	require.NoError(t, err)
	assert.Zero(t, available)
}

func TestCollection_UpsertRejectsMalformedIdentity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.BookInstances.Upsert(context.Background(), &domain.BookInstance{Imprint: "x"})
	require.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestCollection_RemoveThenFindIsNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	bi := domain.NewBookInstance("book-1", "Imprint", "", nil)
	require.NoError(t, s.BookInstances.Insert(ctx, bi))

	require.NoError(t, s.BookInstances.Remove(ctx, bi.ID))
	_, err := s.BookInstances.FindByID(ctx, bi.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Removing again, or removing garbage, is fine.
	require.NoError(t, s.BookInstances.Remove(ctx, bi.ID))
	require.NoError(t, s.BookInstances.Remove(ctx, "garbage"))
}

func TestCollection_RemoveIgnoresIndexShapedIDs(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	bi := domain.NewBookInstance("book-1", "Imprint", "", nil)
	require.NoError(t, s.BookInstances.Insert(ctx, bi))

	require.NoError(t, s.BookInstances.Remove(ctx, "idx:status:Maintenance\x00"+bi.ID))
	require.NoError(t, s.BookInstances.Remove(ctx, "idx:book:book-1\x00"+bi.ID))

	n, err := s.BookInstances.CountBy(ctx, store.IndexBook, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.BookInstances.FindByID(ctx, bi.ID)
	require.NoError(t, err)
}

func TestCollection_FindByReference(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	author := &domain.Author{FirstName: "Isaac", FamilyName: "Asimov"}
	require.NoError(t, s.Authors.Insert(ctx, author))
	fiction := &domain.Genre{Name: "Fiction"}
	require.NoError(t, s.Genres.Insert(ctx, fiction))

	foundation := &domain.Book{Title: "Foundation", AuthorID: author.ID, GenreIDs: []string{fiction.ID}}
	robots := &domain.Book{Title: "I, Robot", AuthorID: author.ID}
	require.NoError(t, s.Books.Insert(ctx, foundation))
	require.NoError(t, s.Books.Insert(ctx, robots))

	byAuthor, err := s.Books.FindBy(ctx, store.IndexAuthor, author.ID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	byGenre, err := s.Books.FindBy(ctx, store.IndexGenre, fiction.ID)
	require.NoError(t, err)
	require.Len(t, byGenre, 1)
	assert.Equal(t, "Foundation", byGenre[0].Title)

	for range 3 {
		require.NoError(t, s.BookInstances.Insert(ctx, domain.NewBookInstance(foundation.ID, "Gnome Press", domain.StatusAvailable, nil)))
	}
	copies, err := s.BookInstances.FindBy(ctx, store.IndexBook, foundation.ID)
	require.NoError(t, err)
	assert.Len(t, copies, 3)

	available, err := s.BookInstances.CountBy(ctx, store.IndexStatus, "Available")
	require.NoError(t, err)
	assert.Equal(t, 3, available)

	named, err := s.Genres.FindBy(ctx, store.IndexName, "Fiction")
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, fiction.ID, named[0].ID)
}

func TestCollection_DanglingReferencesAllowed(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	author := &domain.Author{FirstName: "Ghost", FamilyName: "Writer"}
	require.NoError(t, s.Authors.Insert(ctx, author))
	book := &domain.Book{Title: "Orphan", AuthorID: author.ID}
	require.NoError(t, s.Books.Insert(ctx, book))

	require.NoError(t, s.Authors.Remove(ctx, author.ID))

	got, err := s.Books.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.AuthorID)
}

func TestStore_OpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := store.New(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	genre := &domain.Genre{Name: "Poetry"}
	require.NoError(t, s.Genres.Insert(ctx, genre))
	require.NoError(t, s.Close())

	reopened, err := store.New(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Genres.FindByID(ctx, genre.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poetry", got.Name)
}
