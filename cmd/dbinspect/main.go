// Package main dumps the catalog database read-only: per-collection document
// and index key counts, followed by a sample of each collection's documents.
//
// Usage:
//
//	go run ./cmd/dbinspect -db ~/LocalLibrary/data/db -limit 3
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dustin/go-humanize"
)

var collections = []string{"author:", "genre:", "book:", "bookinstance:"}

// indexMarker follows the collection prefix on secondary index keys.
const indexMarker = "idx:"

type stats struct {
	docs, indexKeys int
	bytes           int64
	samples         [][]byte
}

func main() {
	dbPath := flag.String("db", os.ExpandEnv("$HOME/LocalLibrary/data/db"), "Badger database directory")
	limit := flag.Int("limit", 3, "Documents to print per collection")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	lsm, vlog := db.Size()
	fmt.Println("=== Database Inspection ===")
	fmt.Printf("Path: %s (LSM %s, value log %s)\n\n", *dbPath,
		humanize.Bytes(uint64(lsm)), humanize.Bytes(uint64(vlog)))

	for _, prefix := range collections {
		st, err := inspect(db, prefix, *limit)
		if err != nil {
			log.Fatalf("Failed to scan %s: %v", prefix, err)
		}

		fmt.Printf("--- %s ---\n", strings.TrimSuffix(prefix, ":"))
		fmt.Printf("Documents: %s (%s), index keys: %s\n",
			humanize.Comma(int64(st.docs)), humanize.Bytes(uint64(st.bytes)), humanize.Comma(int64(st.indexKeys)))
		for _, doc := range st.samples {
			fmt.Println(string(doc))
		}
		fmt.Println()
	}
}

func inspect(db *badger.DB, prefix string, limit int) (*stats, error) {
	st := &stats{}
	indexPrefix := []byte(prefix + indexMarker)

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if bytes.HasPrefix(item.Key(), indexPrefix) {
				st.indexKeys++
				continue
			}

			st.docs++
			st.bytes += item.ValueSize()
			if len(st.samples) >= limit {
				continue
			}

			err := item.Value(func(val []byte) error {
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, val, "  ", "  "); err != nil {
					return fmt.Errorf("key %s: %w", item.Key(), err)
				}
				st.samples = append(st.samples, append([]byte("  "), pretty.Bytes()...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return st, err
}
