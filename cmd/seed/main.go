// Package main populates the catalog with sample authors, genres, books and
// copies.
//
// Every record goes through the same create handlers the web forms use, so
// seeded data is validated and sanitized exactly like submitted data. The
// server must not be running against the same data path.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/LocalLibrary/data
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/listenupapp/locallibrary/internal/catalog"
	"github.com/listenupapp/locallibrary/internal/config"
	"github.com/listenupapp/locallibrary/internal/logger"
	"github.com/listenupapp/locallibrary/internal/search"
	"github.com/listenupapp/locallibrary/internal/store"
)

type author struct {
	first, family, born, died string
}

type book struct {
	title, author, summary, isbn string
	genres                       []string
}

type copyOf struct {
	book             int
	imprint, status string
}

var (
	authors = []author{
		{"Patrick", "Rothfuss", "1973-06-06", ""},
		{"Ben", "Bova", "1932-11-08", ""},
		{"Isaac", "Asimov", "1920-01-02", "1992-04-06"},
		{"Bob", "Billings", "", ""},
		{"Jim", "Jones", "1971-12-16", ""},
	}

	genres = []string{"Fantasy", "Science Fiction", "French Poetry"}

	books = []book{
		{"The Name of the Wind (The Kingkiller Chronicle, #1)", "Rothfuss",
			"A young man grows to be the most notorious wizard his world has ever seen.",
			"9781473211896", []string{"Fantasy"}},
		{"The Wise Man's Fear (The Kingkiller Chronicle, #2)", "Rothfuss",
			"Kvothe takes his first steps on the path of the hero and learns how difficult life can be.",
			"9788401352836", []string{"Fantasy"}},
		{"The Slow Regard of Silent Things (Kingkiller Chronicle)", "Rothfuss",
			"Deep below the University there is a dark place, and Auri lives there.",
			"9780756411336", []string{"Fantasy"}},
		{"Apes and Angels", "Bova",
			"Humankind's first expedition outside the solar system races a wave of death.",
			"9780765379528", []string{"Science Fiction"}},
		{"Death Wave", "Bova",
			"Jordan Kell returns to Earth with news of a deadly wave of gamma radiation.",
			"9780765379504", []string{"Science Fiction"}},
		{"Test Book 1", "Asimov", "Summary of test book 1", "ISBN111111", []string{"French Poetry", "Science Fiction"}},
		{"Test Book 2", "Billings", "Summary of test book 2", "ISBN222222", nil},
	}

	copies = []copyOf{
		{0, "London Gollancz, 2014.", "Available"},
		{1, "Gollancz, 2011.", "Loaned"},
		{2, "Gollancz, 2015.", ""},
		{3, "New York Tom Doherty Associates, 2016.", "Available"},
		{3, "New York Tom Doherty Associates, 2016.", "Available"},
		{3, "New York Tom Doherty Associates, 2016.", "Available"},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", "Available"},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", "Maintenance"},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", "Loaned"},
		{0, "Imprint XXX2", ""},
		{1, "Imprint XXX3", ""},
	}
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logs := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
	})

	dbPath := filepath.Join(cfg.Store.DataPath, "db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, logs.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	index, err := search.NewIndex(search.Options{DataPath: cfg.Store.DataPath, Logger: logs.Logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	cat := catalog.New(s, catalog.Options{
		QueryTimeout: cfg.Server.QueryTimeout,
		Logger:       logs.Logger,
		Index:        index,
	})

	ctx := context.Background()
	if err := seed(ctx, cat, s); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	n, err := cat.Search.Reindex(ctx)
	if err != nil {
		log.Fatalf("Failed to rebuild search index: %v", err)
	}
	fmt.Printf("\nSeeded %d authors, %d genres, %d books, %d copies (%d indexed)\n",
		len(authors), len(genres), len(books), len(copies), n)
}

func seed(ctx context.Context, cat *catalog.Catalog, s *store.Store) error {
	authorIDs := make(map[string]string, len(authors))
	for _, a := range authors {
		target, err := submit(ctx, cat.Authors.Create, url.Values{
			"first_name":    {a.first},
			"family_name":   {a.family},
			"date_of_birth": {a.born},
			"date_of_death": {a.died},
		})
		if err != nil {
			return fmt.Errorf("author %s %s: %w", a.first, a.family, err)
		}
		authorIDs[a.family] = lastSegment(target)
		fmt.Printf("Added author: %s %s\n", a.first, a.family)
	}

	genreIDs := make(map[string]string, len(genres))
	for _, name := range genres {
		if _, err := submit(ctx, cat.Genres.Create, url.Values{"name": {name}}); err != nil {
			return fmt.Errorf("genre %s: %w", name, err)
		}
		// Genre URLs carry the name; the book form wants the identity.
		found, err := s.Genres.FindBy(ctx, store.IndexName, name)
		if err != nil || len(found) == 0 {
			return fmt.Errorf("genre %s not stored: %w", name, err)
		}
		genreIDs[name] = found[0].ID
		fmt.Printf("Added genre: %s\n", name)
	}

	bookIDs := make([]string, len(books))
	for i, b := range books {
		values := url.Values{
			"title":   {b.title},
			"author":  {authorIDs[b.author]},
			"summary": {b.summary},
			"isbn":    {b.isbn},
		}
		for _, g := range b.genres {
			values.Add("genre", genreIDs[g])
		}
		target, err := submit(ctx, cat.Books.Create, values)
		if err != nil {
			return fmt.Errorf("book %s: %w", b.title, err)
		}
		bookIDs[i] = lastSegment(target)
		fmt.Printf("Added book: %s\n", b.title)
	}

	for _, c := range copies {
		_, err := submit(ctx, cat.BookInstances.Create, url.Values{
			"book":    {bookIDs[c.book]},
			"imprint": {c.imprint},
			"status":  {c.status},
		})
		if err != nil {
			return fmt.Errorf("copy %s: %w", c.imprint, err)
		}
		fmt.Printf("Added copy: %s\n", c.imprint)
	}

	return nil
}

// submit runs a create handler and returns the redirect target. A
// re-rendered form means the sample data failed validation.
func submit(ctx context.Context, create func(context.Context, url.Values) (*catalog.Result, error), values url.Values) (string, error) {
	res, err := create(ctx, values)
	if err != nil {
		return "", err
	}
	if res.Redirect == "" {
		return "", fmt.Errorf("rejected: %v", res.Data["errors"])
	}
	return res.Redirect, nil
}

func lastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
