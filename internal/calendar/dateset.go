// Package calendar implements the diary calendar: a lightweight per-year
// set of the dates on which a profile has live entries, used by the UI to
// dot calendar days. Date values are timezone-naive YYYY-MM-DD strings
// everywhere; any time.Time is normalized in UTC before comparison so a
// local-timezone conversion can never shift an entry to the wrong day.
package calendar

import (
	"sort"
	"time"
)

// DateLayout is the canonical calendar-date format used across the app.
const DateLayout = "2006-01-02"

// Normalize converts a time.Time to the canonical date string in UTC.
func Normalize(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD string and returns it in canonical form.
// Inputs like "2024-1-5" are normalized to "2024-01-05".
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		// Accept single-digit month/day too before giving up.
		t, err = time.Parse("2006-1-2", s)
		if err != nil {
			return "", err
		}
	}
	return t.UTC().Format(DateLayout), nil
}

// DateSet is an exact-membership set of calendar date strings.
type DateSet struct {
	dates map[string]struct{}
}

// NewDateSet builds a DateSet from date strings. Inputs are assumed to be
// canonical YYYY-MM-DD (the form the entry store emits); duplicates collapse.
func NewDateSet(dates []string) *DateSet {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return &DateSet{dates: set}
}

// Has reports whether an entry exists on the given canonical date string.
func (s *DateSet) Has(date string) bool {
	_, ok := s.dates[date]
	return ok
}

// HasTime reports whether an entry exists on the given time's UTC calendar day.
func (s *DateSet) HasTime(t time.Time) bool {
	return s.Has(Normalize(t))
}

// Dates returns the member dates sorted ascending. Lexicographic order on
// YYYY-MM-DD strings is chronological order.
func (s *DateSet) Dates() []string {
	out := make([]string, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct dates in the set.
func (s *DateSet) Len() int {
	return len(s.dates)
}
