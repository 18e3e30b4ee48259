package domain

import (
	"slices"
	"time"
)

// SortShelf orders books for the library list, in place.
//
// Books are bucketed by status (reading, then to-read, then finished).
// The to-read bucket sorts oldest-added first so the backlog gets
// cleared front to back; the other buckets sort most-recently-touched
// first. Records with a zero date sink to the end of their bucket either
// way. The sort is stable, so equal keys keep their insertion order.
func SortShelf(books []*Book) {
	slices.SortStableFunc(books, compareShelf)
}

// SortedShelf returns a sorted copy, leaving the input untouched.
func SortedShelf(books []*Book) []*Book {
	out := slices.Clone(books)
	SortShelf(out)
	return out
}

func compareShelf(a, b *Book) int {
	if d := a.Status.Priority() - b.Status.Priority(); d != 0 {
		return d
	}
	if a.Status == StatusToRead {
		return compareTimeAsc(a.CreatedAt, b.CreatedAt)
	}
	return compareTimeDesc(a.UpdatedAt, b.UpdatedAt)
}

// compareTimeAsc orders ascending with zero times last.
func compareTimeAsc(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return a.Compare(b)
}

// compareTimeDesc orders descending with zero times last.
func compareTimeDesc(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	return b.Compare(a)
}
