// Package repo provides the key-value persistence boundary for the
// stores. Each store persists its full collection as one JSON blob
// under a fixed slot name; the repository knows nothing about the
// record shapes inside the blob.
package repo

import (
	"context"
	"errors"
)

// Slot names for the two persisted collections. The values match the
// storage keys the mobile app wrote, so an imported snapshot hydrates
// unchanged.
const (
	BooksSlot    = "books-store-v1"
	InsightsSlot = "insights-store-v1"
)

// ErrSlotEmpty is returned by Load when a slot has never been written.
// First run is expected to hit this for both slots.
var ErrSlotEmpty = errors.New("slot has never been written")

// Repository is the durable side of a store: the last-written blob per
// slot, or absence. Save is called fire-and-forget after every mutation;
// the in-memory collection stays authoritative for reads.
type Repository interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, data []byte) error
}
