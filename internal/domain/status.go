package domain

// BookStatus is the three-state reading lifecycle of a book.
type BookStatus string

const (
	// StatusToRead marks a book sitting on the backlog.
	StatusToRead BookStatus = "to-read"

	// StatusReading marks a book currently being read.
	StatusReading BookStatus = "reading"

	// StatusFinished marks a completed book. FinishedAt should be set
	// alongside this status.
	StatusFinished BookStatus = "finished"
)

// AllStatuses lists the statuses in lifecycle order.
//
//nolint:gochecknoglobals // Static enumeration
var AllStatuses = []BookStatus{StatusToRead, StatusReading, StatusFinished}

// Valid reports whether s is one of the three canonical statuses.
func (s BookStatus) Valid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusFinished:
		return true
	}
	return false
}

// Priority returns the shelf ordering bucket: reading first, then
// to-read, then finished.
func (s BookStatus) Priority() int {
	switch s {
	case StatusReading:
		return 0
	case StatusToRead:
		return 1
	case StatusFinished:
		return 2
	default:
		// Unknown statuses sink to the bottom. Backfill should have
		// mapped them already.
		return 3
	}
}

// NormalizeStatus maps legacy status values onto the canonical set.
// Earlier versions of the app used "read" for a completed book.
// Unrecognized values fall back to to-read.
func NormalizeStatus(raw string) BookStatus {
	switch BookStatus(raw) {
	case StatusToRead, StatusReading, StatusFinished:
		return BookStatus(raw)
	}
	if raw == "read" {
		return StatusFinished
	}
	return StatusToRead
}
