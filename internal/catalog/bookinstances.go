package catalog

import (
	"context"

	"github.com/listenupapp/locallibrary/internal/domain"
	"github.com/listenupapp/locallibrary/internal/form"
	"github.com/listenupapp/locallibrary/internal/parallel"
)

// BookInstanceInput is the submitted book copy form.
type BookInstanceInput struct {
	Book    string `form:"book" validate:"notblank" msg:"Book must be specified"`
	Imprint string `form:"imprint" validate:"notblank" msg:"Imprint must be specified"`
	DueBack string `form:"due_back" validate:"isodate" msg:"Invalid date"`
	Status  string `form:"status" validate:"status" msg:"Invalid status"`
}

// CopyView is a book copy with its book resolved. Book is nil when the
// reference dangles.
type CopyView struct {
	*domain.BookInstance
	Book *domain.Book
}

func buildBookInstance(in *BookInstanceInput) *domain.BookInstance {
	return domain.NewBookInstance(in.Book, in.Imprint, domain.Status(in.Status), parseDate(in.DueBack))
}

func newBookInstanceResource(d *deps) *Resource[domain.BookInstance, *domain.BookInstance, BookInstanceInput] {
	return NewResource(Schema[domain.BookInstance, *domain.BookInstance, BookInstanceInput]{
		Name:      "bookinstance",
		Label:     "BookInstance",
		ListTitle: "Book Instance List",
		NotFound:  "Book copy not found",
		Mutable:   true,

		Repo:     d.store.BookInstances,
		Pipeline: form.NewPipeline(d.v, buildBookInstance),

		Resolve: d.resolveCopies,
		DetailTitle: func(v any) string {
			if cv := v.(*CopyView); cv.Book != nil {
				return "Copy: " + cv.Book.Title
			}
			return "Copy"
		},
		Options: d.copyFormOptions,
		Prefill: func(v View, bi *domain.BookInstance) {
			v["bookinstance"] = bi
			v["selected_book"] = bi.BookID
		},
		URL: (*domain.BookInstance).URL,
	}, d.logger, d.timeout)
}

func (d *deps) resolveCopies(ctx context.Context, copies []*domain.BookInstance) ([]any, error) {
	books := newRefs(d.store.Books.FindByID)

	views := make([]any, len(copies))
	for i, bi := range copies {
		b, err := books.get(ctx, bi.BookID)
		if err != nil {
			return nil, err
		}
		views[i] = &CopyView{BookInstance: bi, Book: b}
	}
	return views, nil
}

// copyFormOptions loads the book list for the copy form's book selector.
func (d *deps) copyFormOptions(g *parallel.Group) func(View) error {
	books := parallel.Go(g, "book_list", func(ctx context.Context) ([]*domain.Book, error) {
		list, err := d.store.Books.Find(ctx)
		sortBooks(list)
		return list, err
	})

	return func(v View) error {
		list, err := books.Get()
		if err != nil {
			return err
		}
		v["book_list"] = list
		v["statuses"] = domain.Statuses()
		return nil
	}
}
