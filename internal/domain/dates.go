package domain

import "time"

// Salient date labels for the book detail view.
const (
	LabelFinished = "Finished"
	LabelUpdated  = "Updated"
	LabelAdded    = "Added"
)

// meaningfulDrift is how far UpdatedAt must run ahead of CreatedAt
// before it earns the "Updated" label. Below this the two differ only
// by save-time jitter and the added date is the honest one.
const meaningfulDrift = time.Minute

// DateLabel is the single label/value pair a book detail view shows.
type DateLabel struct {
	Label string
	When  time.Time
}

// SalientDate picks the one date worth showing for a book: the finish
// date when the book is finished and has one, otherwise the last update
// when it differs meaningfully from creation, otherwise the added date.
// Exactly one pair is produced for any valid book.
func SalientDate(b *Book) DateLabel {
	if b.Status == StatusFinished && b.FinishedAt != nil && !b.FinishedAt.IsZero() {
		return DateLabel{Label: LabelFinished, When: *b.FinishedAt}
	}
	if !b.UpdatedAt.IsZero() && b.UpdatedAt.Sub(b.CreatedAt) > meaningfulDrift {
		return DateLabel{Label: LabelUpdated, When: b.UpdatedAt}
	}
	return DateLabel{Label: LabelAdded, When: b.CreatedAt}
}
