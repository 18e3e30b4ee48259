// Package domain contains the core entities and domain logic for the leaflog reading tracker.
package domain

import (
	"slices"
	"time"
)

// Book represents a tracked title in the user's library.
//
// InsightIDs is the book's owned back-reference list into the insights
// collection. The book does not own the insight records themselves; the
// stores keep both sides consistent.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genre       string     `json:"genre"`
	Status      BookStatus `json:"status"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	InsightIDs  []string   `json:"insightIds"`
}

// Touch updates the UpdatedAt timestamp.
// Call this whenever the book or its reference list changes.
func (b *Book) Touch(now time.Time) {
	b.UpdatedAt = now
}

// HasInsight reports whether the given insight id is already referenced.
func (b *Book) HasInsight(insightID string) bool {
	return slices.Contains(b.InsightIDs, insightID)
}

// AttachInsight appends an insight id to the reference list.
// Idempotent: returns false if the id was already present.
func (b *Book) AttachInsight(insightID string) bool {
	if b.HasInsight(insightID) {
		return false
	}
	b.InsightIDs = append(b.InsightIDs, insightID)
	return true
}

// DetachInsight removes an insight id from the reference list.
// Returns false if the id was not present.
func (b *Book) DetachInsight(insightID string) bool {
	idx := slices.Index(b.InsightIDs, insightID)
	if idx < 0 {
		return false
	}
	b.InsightIDs = slices.Delete(b.InsightIDs, idx, idx+1)
	return true
}

// Clone returns a deep copy. Stores hand out clones so previously-taken
// references stay stable when a record is later mutated.
func (b *Book) Clone() *Book {
	c := *b
	if b.FinishedAt != nil {
		t := *b.FinishedAt
		c.FinishedAt = &t
	}
	c.InsightIDs = slices.Clone(b.InsightIDs)
	return &c
}
