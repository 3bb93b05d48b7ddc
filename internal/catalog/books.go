package catalog

import (
	"context"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/form"
	"github.com/listenupapp/locallibrary/internal/parallel"
	"github.com/listenupapp/locallibrary/internal/store"
)

// BookInput is the submitted book form.
type BookInput struct {
	Title   string   `form:"title" validate:"notblank" msg:"Title must not be empty"`
	Author  string   `form:"author" validate:"notblank" msg:"Author must not be empty"`
	Summary string   `form:"summary" validate:"notblank" msg:"Summary must not be empty"`
	ISBN    string   `form:"isbn" validate:"notblank" msg:"ISBN must not be empty"`
	Genre   []string `form:"genre"`
}

// BookView is a book with its author and genres resolved. Author is nil
// and missing genres are skipped when the references dangle.
type BookView struct {
	*domain.Book
	Author *domain.Author
	Genres []*domain.Genre
}

// GenreOption is a genre checkbox on the book form.
type GenreOption struct {
	*domain.Genre
	Checked bool
}

func buildBook(in *BookInput) *domain.Book {
	genres := in.Genre
	if genres == nil {
		genres = []string{}
	}
	return &domain.Book{
		Title:    in.Title,
		AuthorID: in.Author,
		Summary:  in.Summary,
		ISBN:     in.ISBN,
		GenreIDs: genres,
	}
}

var sortBooks = sortByText(func(b *domain.Book) string { return b.Title })

func newBookResource(d *deps) *Resource[domain.Book, *domain.Book, BookInput] {
	return NewResource(Schema[domain.Book, *domain.Book, BookInput]{
		Name:      "book",
		Label:     "Book",
		ListTitle: "Book List",
		NotFound:  "Book not found",

		Repo:     d.store.Books,
		Pipeline: form.NewPipeline(d.v, buildBook, "genre"),

		Sort:    sortBooks,
		Resolve: d.resolveBooks,
		DetailTitle: func(v any) string {
			return v.(*BookView).Title
		},
		Related: func(g *parallel.Group, key string) func(View) error {
			copies := parallel.Go(g, "book_instances", func(ctx context.Context) ([]*domain.BookInstance, error) {
				return d.store.BookInstances.FindBy(ctx, store.IndexBook, key)
			})
			return func(v View) error {
				list, err := copies.Get()
				if err != nil {
					return err
				}
				v["book_instances"] = list
				return nil
			}
		},
		Options: d.bookFormOptions,
		Prefill: func(v View, b *domain.Book) {
			v["book"] = b
			if opts, ok := v["genres"].([]*GenreOption); ok {
				for _, o := range opts {
					o.Checked = b.HasGenre(o.ID)
				}
			}
		},
		URL:     (*domain.Book).URL,
		Created: d.indexBook,
	}, d.logger, d.timeout)
}

func (d *deps) resolveBooks(ctx context.Context, books []*domain.Book) ([]any, error) {
	authors := newRefs(d.store.Authors.FindByID)
	genres := newRefs(d.store.Genres.FindByID)

	views := make([]any, len(books))
	for i, b := range books {
		bv := &BookView{Book: b}

		author, err := authors.get(ctx, b.AuthorID)
		if err != nil {
			return nil, err
		}
		bv.Author = author

		for _, gid := range b.GenreIDs {
			g, err := genres.get(ctx, gid)
			if err != nil {
				return nil, err
			}
			if g != nil {
				bv.Genres = append(bv.Genres, g)
			}
		}
		views[i] = bv
	}
	return views, nil
}

// bookFormOptions loads the author and genre lists in parallel.
func (d *deps) bookFormOptions(g *parallel.Group) func(View) error {
	authors := parallel.Go(g, "authors", func(ctx context.Context) ([]*domain.Author, error) {
		list, err := d.store.Authors.Find(ctx)
		sortAuthors(list)
		return list, err
	})
	genres := parallel.Go(g, "genres", func(ctx context.Context) ([]*domain.Genre, error) {
		list, err := d.store.Genres.Find(ctx)
		sortGenres(list)
		return list, err
	})

	return func(v View) error {
		authorList, err := authors.Get()
		if err != nil {
			return err
		}
		genreList, err := genres.Get()
		if err != nil {
			return err
		}

		opts := make([]*GenreOption, len(genreList))
		for i, g := range genreList {
			opts[i] = &GenreOption{Genre: g}
		}
		v["authors"] = authorList
		v["genres"] = opts
		return nil
	}
}

// indexBook adds a newly created book to the search index. Indexing
// failures are logged; the book is already saved.
func (d *deps) indexBook(ctx context.Context, b *domain.Book) {
	if d.index == nil {
		return
	}
	doc, err := d.bookDocument(ctx, b)
	if err == nil {
		err = d.index.IndexDocument(doc)
	}
	if err != nil {
		d.logger.Warn("failed to index book", "book_id", b.ID, "error", err)
	}
}
