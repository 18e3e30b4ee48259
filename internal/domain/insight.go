package domain

import (
	"slices"
	"time"
)

// Insight is a short user-authored annotation attached to exactly one
// book. Content is stored trimmed; tags are stored normalized. CreatedAt
// is set once and never bumped by edits.
type Insight struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy for copy-on-write reads.
func (n *Insight) Clone() *Insight {
	c := *n
	c.Tags = slices.Clone(n.Tags)
	return &c
}
