package domain

// Book is a catalogued title. Author and Genres hold identities of other
// records; the store does not enforce that they exist.
type Book struct {
	Record
	Title    string   `json:"title"`
	AuthorID string   `json:"author"`
	Summary  string   `json:"summary"`
	ISBN     string   `json:"isbn"`
	GenreIDs []string `json:"genre"`
}

// URL returns the book's canonical path.
func (b *Book) URL() string {
	return "/catalog/book/" + b.ID
}

// HasGenre reports whether the book is tagged with the genre identity.
func (b *Book) HasGenre(genreID string) bool {
	for _, id := range b.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}
