package core

import (
	"strings"
	"time"
)

// FilterCriteria narrows a ledger view. Zero-value fields are ignored, so an
// empty criteria is the identity filter. From/To compare on whole days,
// inclusive on both ends. Category and Description match case-insensitive
// substrings.
type FilterCriteria struct {
	From        time.Time
	To          time.Time
	Category    string
	Description string
}

// IsZero reports whether no predicate is set.
func (c FilterCriteria) IsZero() bool {
	return c.From.IsZero() && c.To.IsZero() && c.Category == "" && c.Description == ""
}

// Matches reports whether a record satisfies every supplied predicate.
func (c FilterCriteria) Matches(r Record) bool {
	if !c.From.IsZero() && dayOf(r.Time).Before(dayOf(c.From)) {
		return false
	}
	if !c.To.IsZero() && dayOf(r.Time).After(dayOf(c.To)) {
		return false
	}
	if c.Category != "" && !containsFold(r.Category, c.Category) {
		return false
	}
	if c.Description != "" && !containsFold(r.Description, c.Description) {
		return false
	}
	return true
}

// Filter returns the subsequence of records satisfying the criteria,
// preserving ledger order.
func Filter(records []Record, c FilterCriteria) []Record {
	if c.IsZero() {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterMonth keeps records belonging to a "YYYY-MM" period. An empty month
// is the identity.
func FilterMonth(records []Record, month string) []Record {
	if month == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Month() == month {
			out = append(out, r)
		}
	}
	return out
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
