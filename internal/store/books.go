package store

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"sync"
	"time"

	"github.com/leaflogapp/leaflog-core/internal/domain"
	"github.com/leaflogapp/leaflog-core/internal/errors"
	"github.com/leaflogapp/leaflog-core/internal/repo"
)

// InsightPurger removes every insight belonging to a book. The books
// store uses it to cascade deletes without depending on the insights
// store directly.
type InsightPurger interface {
	RemoveByBookID(bookID string) int
}

// NoopPurger is a no-op implementation for tests that only exercise the
// books side.
type NoopPurger struct{}

// RemoveByBookID implements InsightPurger as a no-op.
func (NoopPurger) RemoveByBookID(string) int { return 0 }

// Books is the in-memory collection of book records, newest-added
// first. It is the single source of truth once hydrated; every mutation
// mirrors the whole collection to the books slot.
type Books struct {
	mu       sync.RWMutex
	books    []*domain.Book
	hydrated bool

	// Cascade collaborator, set via SetInsightPurger after both stores
	// exist to avoid a circular constructor dependency.
	purger InsightPurger

	logger *slog.Logger
	clock  func() time.Time
	writer *persister
}

// NewBooks creates a books store persisting to the books slot of r.
func NewBooks(r repo.Repository, logger *slog.Logger) *Books {
	return &Books{
		books:  []*domain.Book{},
		purger: NoopPurger{},
		logger: logger,
		clock:  time.Now,
		writer: newPersister(r, repo.BooksSlot, logger),
	}
}

// SetInsightPurger wires the cascade-delete collaborator.
func (s *Books) SetInsightPurger(p InsightPurger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purger = p
}

// SetClock overrides the time source. Tests use this to pin timestamps.
func (s *Books) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Hydrate loads the persisted collection into memory. Runs once at
// startup; an empty slot hydrates to an empty collection, malformed
// JSON fails fast. Records get missing optional fields backfilled.
func (s *Books) Hydrate(ctx context.Context, r repo.Repository) error {
	data, err := r.Load(ctx, repo.BooksSlot)
	if err != nil && !errors.Is(err, repo.ErrSlotEmpty) {
		return errors.Internal("load books slot", err)
	}

	books := []*domain.Book{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &books); err != nil {
			return errors.Corrupt("unmarshal books collection", err)
		}
	}

	now := time.Now()
	for _, b := range books {
		domain.BackfillBook(b, now)
	}

	s.mu.Lock()
	s.books = books
	s.hydrated = true
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "books store hydrated",
			slog.Int("count", len(books)),
		)
	}
	return nil
}

// HasHydrated reports whether the startup load has completed. Callers
// gate mutating operations on this so a transient empty state never
// overwrites previously-persisted data.
func (s *Books) HasHydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Add inserts a book at the front of the collection. The caller
// supplies the generated id and initial timestamps.
func (s *Books) Add(b *domain.Book) {
	s.mu.Lock()
	s.books = append([]*domain.Book{b.Clone()}, s.books...)
	s.persistLocked()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelInfo, "book added",
			slog.String("id", b.ID),
			slog.String("title", b.Title),
			slog.String("status", string(b.Status)),
		)
	}
}

// BookPatch is a partial update; nil fields are left untouched.
type BookPatch struct {
	Title       *string
	Author      *string
	Genre       *string
	Status      *domain.BookStatus
	Description *string
	CreatedAt   *time.Time
	FinishedAt  *time.Time
}

// Update merges the patch into the matching record and refreshes
// UpdatedAt. Returns false (and mutates nothing) if the id is unknown.
func (s *Books) Update(id string, patch BookPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}

	// Copy-on-write: replace the record so snapshots taken earlier
	// stay unchanged.
	b := s.books[idx].Clone()
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.Genre != nil {
		b.Genre = *patch.Genre
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.CreatedAt != nil {
		b.CreatedAt = *patch.CreatedAt
	}
	if patch.FinishedAt != nil {
		b.FinishedAt = patch.FinishedAt
	}
	b.Touch(s.clock())
	s.books[idx] = b

	s.persistLocked()
	return true
}

// Remove deletes the book and cascades into the insights collection:
// every insight whose BookID matches is removed from the sibling store
// before Remove returns. No-op if the id is unknown.
func (s *Books) Remove(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.books = append(s.books[:idx], s.books[idx+1:]...)
	s.persistLocked()
	purger := s.purger
	s.mu.Unlock()

	purged := purger.RemoveByBookID(id)

	if s.logger != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelInfo, "book removed",
			slog.String("id", id),
			slog.Int("insights_purged", purged),
		)
	}
	return true
}

// GetByID returns a copy of the record, or false when absent.
func (s *Books) GetByID(id string) (*domain.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, false
	}
	return s.books[idx].Clone(), true
}

// List returns a copy of the collection in insertion order.
func (s *Books) List() []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Book, len(s.books))
	for i, b := range s.books {
		out[i] = b.Clone()
	}
	return out
}

// SetAll bulk-replaces the collection. Used at startup and by imports.
func (s *Books) SetAll(books []*domain.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = make([]*domain.Book, len(books))
	for i, b := range books {
		s.books[i] = b.Clone()
	}
	s.persistLocked()
}

// AttachInsight appends an insight id to the book's reference list and
// refreshes UpdatedAt. Idempotent: an already-attached id changes
// nothing, not even the timestamp. Reports whether the book was found
// and modified.
func (s *Books) AttachInsight(bookID, insightID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(bookID)
	if idx < 0 {
		return false
	}
	b := s.books[idx].Clone()
	if !b.AttachInsight(insightID) {
		return false
	}
	b.Touch(s.clock())
	s.books[idx] = b
	s.persistLocked()
	return true
}

// DetachInsight removes an insight id from the book's reference list
// and refreshes UpdatedAt. No-op when the book or the reference is
// absent.
func (s *Books) DetachInsight(bookID, insightID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(bookID)
	if idx < 0 {
		return false
	}
	b := s.books[idx].Clone()
	if !b.DetachInsight(insightID) {
		return false
	}
	b.Touch(s.clock())
	s.books[idx] = b
	s.persistLocked()
	return true
}

// Close flushes the pending durable write.
func (s *Books) Close() {
	s.writer.Close()
}

func (s *Books) indexLocked(id string) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked marshals the collection and hands it to the
// fire-and-forget writer. Callers must hold the lock.
func (s *Books) persistLocked() {
	data, err := json.Marshal(s.books)
	if err != nil {
		// Domain records always marshal; reaching this is a programmer error.
		if s.logger != nil {
			s.logger.Error("marshal books collection", "error", err)
		}
		return
	}
	s.writer.Enqueue(data)
}
