package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps results when Params.Limit is not positive.
const DefaultLimit = 20

// Params configures a search.
type Params struct {
	Query  string
	Limit  int
	Offset int
}

// Result is one page of search hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching book.
type Hit struct {
	ID     string   `json:"id"`
	Score  float64  `json:"score"`
	Title  string   `json:"title"`
	Author string   `json:"author,omitempty"`
	ISBN   string   `json:"isbn,omitempty"`
	Genres []string `json:"genres,omitempty"`
}

// Search runs a ranked query across title, author, summary, ISBN and genre.
// An empty query matches every book.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params.Query), limit, params.Offset, false)
	req.SortBy([]string{"-_score", "title"})
	req.Fields = []string{"title", "author", "isbn", "genres"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["isbn"].(string); ok {
			hit.ISBN = v
		}
		// Multi-valued stored fields come back as []any, single values as string.
		switch g := h.Fields["genres"].(type) {
		case string:
			hit.Genres = []string{g}
		case []any:
			for _, v := range g {
				if s, ok := v.(string); ok {
					hit.Genres = append(hit.Genres, s)
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	return result, nil
}

func buildQuery(q string) query.Query {
	q = strings.TrimSpace(q)
	if q == "" {
		return bleve.NewMatchAllQuery()
	}

	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	authorMatch := bleve.NewMatchQuery(q)
	authorMatch.SetField("author")
	authorMatch.SetBoost(2.0)

	summaryMatch := bleve.NewMatchQuery(q)
	summaryMatch.SetField("summary")

	isbnTerm := bleve.NewTermQuery(q)
	isbnTerm.SetField("isbn")
	isbnTerm.SetBoost(5.0)

	genreTerm := bleve.NewTermQuery(q)
	genreTerm.SetField("genres")

	// Typo tolerance on the title.
	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)

	queries := []query.Query{titleMatch, authorMatch, summaryMatch, isbnTerm, genreTerm, fuzzy}

	if len(q) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(q))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
