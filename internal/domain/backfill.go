package domain

import "time"

// BackfillBook repairs missing or legacy optional fields on a record
// loaded from persistence. This is the only migration logic in the core:
// a partially-shaped record is fixed up rather than the whole collection
// being rejected.
func BackfillBook(b *Book, now time.Time) {
	b.Status = NormalizeStatus(string(b.Status))

	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	b.Author = ResolveAuthor(b.Author)
	b.Genre = ResolveGenre(b.Genre)

	if b.InsightIDs == nil {
		b.InsightIDs = []string{}
	}
}

// BackfillInsight repairs missing optional fields on a loaded insight.
func BackfillInsight(n *Insight, now time.Time) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
}
