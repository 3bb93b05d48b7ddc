package catalog

import (
	"context"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/form"
	"github.com/listenupapp/locallibrary/internal/parallel"
	"github.com/listenupapp/locallibrary/internal/store"
)

// GenreInput is the submitted genre form.
type GenreInput struct {
	Name string `form:"name" validate:"notblank,min=3,max=100" msg:"Genre name must contain between 3 and 100 characters"`
}

func buildGenre(in *GenreInput) *domain.Genre {
	return &domain.Genre{Name: in.Name}
}

var sortGenres = sortByText(func(g *domain.Genre) string { return g.Name })

func newGenreResource(d *deps) *Resource[domain.Genre, *domain.Genre, GenreInput] {
	return NewResource(Schema[domain.Genre, *domain.Genre, GenreInput]{
		Name:      "genre",
		Label:     "Genre",
		ListTitle: "Genre List",
		NotFound:  "Genre not found",

		Repo:     d.store.Genres,
		Pipeline: form.NewPipeline(d.v, buildGenre),

		Sort:        sortGenres,
		Lookup:      d.findGenre,
		Resolve:     identity[domain.Genre],
		DetailTitle: func(any) string { return "Genre Detail" },
		Related: func(g *parallel.Group, key string) func(View) error {
			books := parallel.Go(g, "genre_books", func(ctx context.Context) ([]*domain.Book, error) {
				genre, err := d.findGenre(ctx, key)
				if store.IsNotFound(err) {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				list, err := d.store.Books.FindBy(ctx, store.IndexGenre, genre.ID)
				sortBooks(list)
				return list, err
			})
			return func(v View) error {
				list, err := books.Get()
				if err != nil {
					return err
				}
				v["genre_books"] = list
				return nil
			}
		},
		Duplicate: func(ctx context.Context, g *domain.Genre) (*domain.Genre, error) {
			existing, err := d.store.Genres.FindBy(ctx, store.IndexName, g.Name)
			if err != nil || len(existing) == 0 {
				return nil, err
			}
			return existing[0], nil
		},
		URL: (*domain.Genre).URL,
	}, d.logger, d.timeout)
}

// findGenre resolves a decoded genre URL key. Genre URLs carry the name, so
// the name index is tried before the identity.
func (d *deps) findGenre(ctx context.Context, key string) (*domain.Genre, error) {
	byName, err := d.store.Genres.FindBy(ctx, store.IndexName, key)
	if err != nil {
		return nil, err
	}
	if len(byName) > 0 {
		return byName[0], nil
	}
	return d.store.Genres.FindByID(ctx, key)
}
