package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/leaflogapp/leaflog-core/internal/domain"
	"github.com/leaflogapp/leaflog-core/internal/repo"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.leaflog/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	var books []*domain.Book
	var insights []*domain.Insight

	err = db.View(func(txn *badger.Txn) error {
		if raw, err := slotValue(txn, repo.BooksSlot); err != nil {
			return fmt.Errorf("reading %s: %w", repo.BooksSlot, err)
		} else if raw != nil {
			if err := json.Unmarshal(raw, &books); err != nil {
				return fmt.Errorf("decoding %s: %w", repo.BooksSlot, err)
			}
		}
		if raw, err := slotValue(txn, repo.InsightsSlot); err != nil {
			return fmt.Errorf("reading %s: %w", repo.InsightsSlot, err)
		} else if raw != nil {
			if err := json.Unmarshal(raw, &insights); err != nil {
				return fmt.Errorf("decoding %s: %w", repo.InsightsSlot, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error reading database: %v", err)
	}

	byStatus := map[domain.BookStatus]int{}
	notesByBook := map[string]int{}
	for _, n := range insights {
		notesByBook[n.BookID]++
	}

	shown := 0
	for _, b := range books {
		byStatus[b.Status]++
		if shown < 5 {
			fmt.Printf("Book: %s\n", b.Title)
			fmt.Printf("  ID: %s\n", b.ID)
			fmt.Printf("  Status: %s\n", b.Status)
			fmt.Printf("  Notes: %d (refs: %d)\n", notesByBook[b.ID], len(b.InsightIDs))
			if notesByBook[b.ID] != len(b.InsightIDs) {
				fmt.Printf("  !! reference mismatch\n")
			}
			fmt.Println()
			shown++
		}
	}

	orphans := 0
	known := map[string]bool{}
	for _, b := range books {
		known[b.ID] = true
	}
	for _, n := range insights {
		if !known[n.BookID] {
			orphans++
		}
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", len(books))
	for _, s := range domain.AllStatuses {
		fmt.Printf("  %s: %d\n", s, byStatus[s])
	}
	fmt.Printf("Total notes: %d\n", len(insights))
	fmt.Printf("Orphaned notes: %d\n", orphans)
}

// slotValue returns the raw bytes stored under a slot key, or nil when
// the slot has never been written.
func slotValue(txn *badger.Txn, slot string) ([]byte, error) {
	item, err := txn.Get([]byte(slot))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
