package catalog

import (
	"context"
	"time"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/form"
	"github.com/listenupapp/locallibrary/internal/parallel"
	"github.com/listenupapp/locallibrary/internal/store"
)

// AuthorInput is the submitted author form.
type AuthorInput struct {
	FirstName   string `form:"first_name" validate:"notblank,max=100" label:"First name"`
	FamilyName  string `form:"family_name" validate:"notblank,max=100" label:"Family name"`
	DateOfBirth string `form:"date_of_birth" validate:"isodate" msg:"Invalid date of birth"`
	DateOfDeath string `form:"date_of_death" validate:"isodate" msg:"Invalid date of death"`
}

func buildAuthor(in *AuthorInput) *domain.Author {
	return &domain.Author{
		FirstName:   in.FirstName,
		FamilyName:  in.FamilyName,
		DateOfBirth: parseDate(in.DateOfBirth),
		DateOfDeath: parseDate(in.DateOfDeath),
	}
}

// parseDate reads an optional submitted date. Empty or unparseable input
// yields nil; validation has already reported the latter.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := domain.ParseFormDate(s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return nil
		}
		t = t.UTC()
	}
	return &t
}

var sortAuthors = sortByText(
	func(a *domain.Author) string { return a.FamilyName },
	func(a *domain.Author) string { return a.FirstName },
)

func newAuthorResource(d *deps) *Resource[domain.Author, *domain.Author, AuthorInput] {
	return NewResource(Schema[domain.Author, *domain.Author, AuthorInput]{
		Name:      "author",
		Label:     "Author",
		ListTitle: "Author List",
		NotFound:  "Author not found",

		Repo:     d.store.Authors,
		Pipeline: form.NewPipeline(d.v, buildAuthor),

		Sort:        sortAuthors,
		Resolve:     identity[domain.Author],
		DetailTitle: func(any) string { return "Author Detail" },
		Related: func(g *parallel.Group, key string) func(View) error {
			books := parallel.Go(g, "author_books", func(ctx context.Context) ([]*domain.Book, error) {
				list, err := d.store.Books.FindBy(ctx, store.IndexAuthor, key)
				sortBooks(list)
				return list, err
			})
			return func(v View) error {
				list, err := books.Get()
				if err != nil {
					return err
				}
				v["author_books"] = list
				return nil
			}
		},
		URL: (*domain.Author).URL,
	}, d.logger, d.timeout)
}
