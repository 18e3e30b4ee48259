package domain

import (
	"slices"
	"time"

	"github.com/leaflogapp/leaflog-core/internal/timeutil"
)

// EventType distinguishes the two activity feed sources.
type EventType string

const (
	// EventInsight is emitted for every insight, stamped at its CreatedAt.
	EventInsight EventType = "insight"

	// EventFinishedBook is emitted for every finished book, stamped at
	// FinishedAt with UpdatedAt as the fallback.
	EventFinishedBook EventType = "finished_book"
)

// UnknownBookTitle is rendered when an event's book can no longer be
// resolved (e.g. an insight orphaned by an interrupted cascade).
const UnknownBookTitle = "Unknown Book"

// TimelineEvent is one entry in the unified activity feed.
// Book info is denormalized so the feed renders without lookups.
type TimelineEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	BookID     string    `json:"bookId"`
	BookTitle  string    `json:"bookTitle"`
}

// BuildTimeline merges insights and finished books into a single
// reverse-chronological feed. Events with equal timestamps keep the
// order of their sources (insights before finished books).
func BuildTimeline(books []*Book, insights []*Insight) []TimelineEvent {
	titleByID := make(map[string]string, len(books))
	for _, b := range books {
		titleByID[b.ID] = b.Title
	}

	events := make([]TimelineEvent, 0, len(insights)+len(books))

	for _, n := range insights {
		title, ok := titleByID[n.BookID]
		if !ok {
			title = UnknownBookTitle
		}
		events = append(events, TimelineEvent{
			ID:         "insight:" + n.ID,
			Type:       EventInsight,
			OccurredAt: n.CreatedAt,
			BookID:     n.BookID,
			BookTitle:  title,
		})
	}

	for _, b := range books {
		if b.Status != StatusFinished {
			continue
		}
		occurred := b.UpdatedAt
		if b.FinishedAt != nil && !b.FinishedAt.IsZero() {
			occurred = *b.FinishedAt
		}
		events = append(events, TimelineEvent{
			ID:         "book:" + b.ID,
			Type:       EventFinishedBook,
			OccurredAt: occurred,
			BookID:     b.ID,
			BookTitle:  b.Title,
		})
	}

	slices.SortStableFunc(events, func(a, b TimelineEvent) int {
		return compareTimeDesc(a.OccurredAt, b.OccurredAt)
	})
	return events
}

// FilterRecent keeps events inside the trailing window. The boundary is
// inclusive at now minus days and exclusive of the future.
func FilterRecent(events []TimelineEvent, days int, now time.Time) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(events))
	for _, e := range events {
		if timeutil.WithinLastNDays(e.OccurredAt, days, now) {
			out = append(out, e)
		}
	}
	return out
}

// ReadingSummary is the header card on the timeline screen: activity
// counts inside the summary window plus the freshest insight.
type ReadingSummary struct {
	InsightsWritten int
	BooksFinished   int
	LatestInsight   *Insight
}

// BuildSummary computes the recent reading summary over a trailing
// window of days.
func BuildSummary(books []*Book, insights []*Insight, days int, now time.Time) ReadingSummary {
	var s ReadingSummary

	for _, n := range insights {
		if !timeutil.WithinLastNDays(n.CreatedAt, days, now) {
			continue
		}
		s.InsightsWritten++
		if s.LatestInsight == nil || n.CreatedAt.After(s.LatestInsight.CreatedAt) {
			s.LatestInsight = n
		}
	}

	for _, b := range books {
		if b.Status != StatusFinished || b.FinishedAt == nil {
			continue
		}
		if timeutil.WithinLastNDays(*b.FinishedAt, days, now) {
			s.BooksFinished++
		}
	}

	return s
}
