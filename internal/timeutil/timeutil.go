// Package timeutil provides the date coercion and formatting helpers
// shared by the derived views. All functions take an explicit "now" so
// output stays deterministic under test.
package timeutil

import (
	"fmt"
	"time"
)

// ToTime parses an ISO-8601 timestamp. Missing or unparseable values
// coerce to the zero time, never an error; callers treat zero as the
// most "unknown" extreme for their context.
func ToTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Date-only form shows up in backdated createdAt values.
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// WithinLastNDays reports whether t falls inside the trailing window:
// on-or-after now minus days, and not after now. Future timestamps are
// excluded rather than treated as due-now; zero times never qualify.
func WithinLastNDays(t time.Time, days int, now time.Time) bool {
	if t.IsZero() || t.After(now) {
		return false
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	return !t.Before(cutoff)
}

// FormatRelative renders a timestamp as a short past-tense string like
// "3 days ago". Future or zero timestamps render as the empty string;
// the caller omits the element rather than showing a bogus date.
func FormatRelative(t time.Time, now time.Time) string {
	if t.IsZero() || t.After(now) {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/(24*30)), "month")
	default:
		return plural(int(d.Hours()/(24*365)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
