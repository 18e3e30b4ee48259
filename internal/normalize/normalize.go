// Package normalize provides utilities for normalizing free-text input
// before it is stored.
package normalize

import "strings"

// Tags normalizes a list of raw tag values: trim whitespace, lowercase,
// drop empties, and deduplicate while preserving first-seen order. A nil
// input yields an empty list, never nil. Idempotent: normalizing an
// already-normalized list returns the same list.
func Tags(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	for _, value := range values {
		tag := strings.ToLower(strings.TrimSpace(sanitizeString(value)))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}

	return result
}

// TagString normalizes a comma-separated tag string. "Go, go , ,SciFi"
// becomes ["go", "scifi"].
func TagString(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return Tags(strings.Split(raw, ","))
}

// sanitizeString removes null bytes, which can cause issues in databases
// and JSON parsing when input arrives from pasted text.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
