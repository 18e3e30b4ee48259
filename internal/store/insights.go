package store

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/leaflogapp/leaflog-core/internal/domain"
	"github.com/leaflogapp/leaflog-core/internal/errors"
	"github.com/leaflogapp/leaflog-core/internal/id"
	"github.com/leaflogapp/leaflog-core/internal/normalize"
	"github.com/leaflogapp/leaflog-core/internal/repo"
)

// BookRefUpdater is the insights store's view of the books store: the
// owning book's reference list must change in the same logical
// operation as the insight collection. Keeping this an interface makes
// the cross-store contract explicit and mockable.
type BookRefUpdater interface {
	AttachInsight(bookID, insightID string) bool
	DetachInsight(bookID, insightID string) bool
}

// NoopRefUpdater is a no-op implementation for tests that only exercise
// the insights side.
type NoopRefUpdater struct{}

// AttachInsight implements BookRefUpdater as a no-op.
func (NoopRefUpdater) AttachInsight(string, string) bool { return false }

// DetachInsight implements BookRefUpdater as a no-op.
func (NoopRefUpdater) DetachInsight(string, string) bool { return false }

// Insights is the in-memory collection of insight records, newest
// first, mirrored to the insights slot on every mutation.
type Insights struct {
	mu       sync.RWMutex
	insights []*domain.Insight
	hydrated bool

	books  BookRefUpdater
	logger *slog.Logger
	clock  func() time.Time
	writer *persister
}

// NewInsights creates an insights store persisting to the insights slot
// of r. The books collaborator keeps the owning book's reference list
// in step with insight mutations.
func NewInsights(r repo.Repository, books BookRefUpdater, logger *slog.Logger) *Insights {
	return &Insights{
		insights: []*domain.Insight{},
		books:    books,
		logger:   logger,
		clock:    time.Now,
		writer:   newPersister(r, repo.InsightsSlot, logger),
	}
}

// SetClock overrides the time source for tests.
func (s *Insights) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Hydrate loads the persisted collection. See Books.Hydrate.
func (s *Insights) Hydrate(ctx context.Context, r repo.Repository) error {
	data, err := r.Load(ctx, repo.InsightsSlot)
	if err != nil && !errors.Is(err, repo.ErrSlotEmpty) {
		return errors.Internal("load insights slot", err)
	}

	insights := []*domain.Insight{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &insights); err != nil {
			return errors.Corrupt("unmarshal insights collection", err)
		}
	}

	now := time.Now()
	for _, n := range insights {
		domain.BackfillInsight(n, now)
	}

	s.mu.Lock()
	s.insights = insights
	s.hydrated = true
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "insights store hydrated",
			slog.Int("count", len(insights)),
		)
	}
	return nil
}

// HasHydrated reports whether the startup load has completed.
func (s *Insights) HasHydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// InsightInput is the creation payload. Tags may arrive raw; they are
// normalized on the way in.
type InsightInput struct {
	Content string
	Tags    []string
}

// Add creates an insight for a book and appends its id to the owning
// book's reference list, refreshing the book's UpdatedAt. Content that
// trims to empty is a silent no-op: no record, no error, nothing
// returned. The returned record is a copy.
func (s *Insights) Add(bookID string, input InsightInput) (*domain.Insight, bool) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, false
	}

	n := &domain.Insight{
		ID:        id.NewInsightID(),
		BookID:    bookID,
		Content:   content,
		Tags:      normalize.Tags(input.Tags),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.insights = append([]*domain.Insight{n}, s.insights...)
	s.persistLocked()
	s.mu.Unlock()

	// Same logical operation: the reference list is updated before Add
	// returns, so no caller can observe the insight without it.
	s.books.AttachInsight(bookID, n.ID)

	if s.logger != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelInfo, "insight added",
			slog.String("id", n.ID),
			slog.String("book_id", bookID),
			slog.Int("tags", len(n.Tags)),
		)
	}
	return n.Clone(), true
}

// InsightPatch is a partial update; nil fields are left untouched.
type InsightPatch struct {
	Content *string
	Tags    []string
}

// Update edits an insight's content and/or tags. Content that trims to
// empty never overwrites the existing content. A bookID that does not
// match the record's owning book is treated as not-found, preventing
// cross-book edits through stale references. CreatedAt is immutable.
func (s *Insights) Update(bookID, insightID string, patch InsightPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(insightID)
	if idx < 0 || s.insights[idx].BookID != bookID {
		return false
	}

	n := s.insights[idx].Clone()
	if patch.Content != nil {
		if content := strings.TrimSpace(*patch.Content); content != "" {
			n.Content = content
		}
	}
	if patch.Tags != nil {
		n.Tags = normalize.Tags(patch.Tags)
	}
	s.insights[idx] = n

	s.persistLocked()
	return true
}

// Remove deletes an insight and detaches its id from the owning book,
// refreshing the book's UpdatedAt. No-op when the record is absent or
// the bookID does not match.
func (s *Insights) Remove(bookID, insightID string) bool {
	s.mu.Lock()
	idx := s.indexLocked(insightID)
	if idx < 0 || s.insights[idx].BookID != bookID {
		s.mu.Unlock()
		return false
	}
	s.insights = append(s.insights[:idx], s.insights[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	s.books.DetachInsight(bookID, insightID)
	return true
}

// RemoveByBookID deletes every insight belonging to a book. This is the
// cascade target for Books.Remove; the book is going away, so its
// reference list is not touched. Returns the number removed.
func (s *Insights) RemoveByBookID(bookID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.insights[:0]
	removed := 0
	for _, n := range s.insights {
		if n.BookID == bookID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	if removed == 0 {
		return 0
	}
	s.insights = kept
	s.persistLocked()
	return removed
}

// GetByIDs returns the matching records in collection order (insertion
// order, newest first) — not input order. Deterministic for a fixed
// collection state.
func (s *Insights) GetByIDs(ids []string) []*domain.Insight {
	if len(ids) == 0 {
		return []*domain.Insight{}
	}
	want := make(map[string]struct{}, len(ids))
	for _, nid := range ids {
		want[nid] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Insight{}
	for _, n := range s.insights {
		if _, ok := want[n.ID]; ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

// GetByBookID returns the insights owned by a book, in collection order.
func (s *Insights) GetByBookID(bookID string) []*domain.Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Insight{}
	for _, n := range s.insights {
		if n.BookID == bookID {
			out = append(out, n.Clone())
		}
	}
	return out
}

// List returns a copy of the whole collection in insertion order.
func (s *Insights) List() []*domain.Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Insight, len(s.insights))
	for i, n := range s.insights {
		out[i] = n.Clone()
	}
	return out
}

// SetAll bulk-replaces the collection. Used at startup and by imports.
func (s *Insights) SetAll(insights []*domain.Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insights = make([]*domain.Insight, len(insights))
	for i, n := range insights {
		s.insights[i] = n.Clone()
	}
	s.persistLocked()
}

// Close flushes the pending durable write.
func (s *Insights) Close() {
	s.writer.Close()
}

func (s *Insights) now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock()
}

func (s *Insights) indexLocked(insightID string) int {
	for i, n := range s.insights {
		if n.ID == insightID {
			return i
		}
	}
	return -1
}

func (s *Insights) persistLocked() {
	data, err := json.Marshal(s.insights)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal insights collection", "error", err)
		}
		return
	}
	s.writer.Enqueue(data)
}
