// Package search provides full-text search over the book catalog using Bleve.
package search

import (
	"html"

	"github.com/listenupapp/locallibrary/internal/domain"
)

// Document is the indexed form of a book. Author and genre names are
// denormalized so one query covers them.
type Document struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary,omitempty"`
	Author    string   `json:"author,omitempty"`
	ISBN      string   `json:"isbn,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	CreatedAt int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map keyed by the mapped field names.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"created_at": d.CreatedAt,
	}
	if d.Summary != "" {
		m["summary"] = d.Summary
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	return m
}

// BookDocument converts a book to a Document. Stored catalog text is
// HTML-escaped, so it is unescaped here to index the words users type.
// A nil author indexes the book without an author name.
func BookDocument(book *domain.Book, author *domain.Author, genres []*domain.Genre) *Document {
	doc := &Document{
		ID:        book.ID,
		Title:     html.UnescapeString(book.Title),
		Summary:   html.UnescapeString(book.Summary),
		ISBN:      html.UnescapeString(book.ISBN),
		CreatedAt: book.CreatedAt.UnixMilli(),
	}
	if author != nil {
		doc.Author = html.UnescapeString(author.FirstName + " " + author.FamilyName)
	}
	for _, g := range genres {
		if g != nil {
			doc.Genres = append(doc.Genres, html.UnescapeString(g.Name))
		}
	}
	return doc
}
