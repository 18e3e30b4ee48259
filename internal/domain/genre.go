package domain

import (
	"slices"
	"strings"
)

// Defaults applied once at the boundary (form submission, load-time
// backfill) when the optional descriptive fields are absent. Read paths
// never re-resolve.
const (
	DefaultAuthor = "Unknown"
	DefaultGenre  = "Unknown"
)

// Genres is the flat list of genres the app offers in its picker.
//
//nolint:gochecknoglobals // Static enumeration
var Genres = []string{
	DefaultGenre,
	"Sci-Fi",
	"Fantasy",
	"Mystery",
	"Romance",
	"Biography",
	"History",
	"Self-Help",
	"Health",
	"Travel",
	"Children's",
	"Young Adult",
	"Horror",
	"Thriller",
	"Non-Fiction",
	"Fiction",
	"Poetry",
	"Classic",
	"Graphic Novel",
	"Religion",
	"Philosophy",
	"Science",
	"Art",
	"Cooking",
	"Business",
	"Economics",
	"Finance",
	"Politics",
	"Education",
	"Music",
	"Sports",
	"Comics",
}

// KnownGenre reports whether g is one of the picker genres.
func KnownGenre(g string) bool {
	return slices.Contains(Genres, g)
}

// ResolveAuthor returns the author or the Unknown sentinel when blank.
func ResolveAuthor(author string) string {
	if strings.TrimSpace(author) == "" {
		return DefaultAuthor
	}
	return author
}

// ResolveGenre returns the genre or the Unknown sentinel when blank.
func ResolveGenre(genre string) string {
	if strings.TrimSpace(genre) == "" {
		return DefaultGenre
	}
	return genre
}
