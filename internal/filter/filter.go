// Package filter implements the pure event filtering pipeline: criteria
// matching for the browse view and the upcoming-events selector for the
// featured section. All functions are deterministic and perform no I/O;
// the reference time is injected by the caller.
package filter

import (
	"sort"
	"strings"
	"time"

	"faithconnect/internal/domain"
)

// Apply returns the subset of events matching criteria, preserving input
// order. Filters are AND-combined: category (exact, case-sensitive), search
// term (case-insensitive substring of title, description, or location), and
// date range relative to the local midnight of now.
//
// Events with a malformed date are excluded from any date-ranged filter but
// pass through when criteria.DateRange is RangeAll.
func Apply(events []domain.Event, criteria domain.FilterCriteria, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(events))

	term := strings.ToLower(strings.TrimSpace(criteria.SearchTerm))
	today := midnight(now)

	for _, e := range events {
		if criteria.Category != "" && criteria.Category != domain.CategoryAll && e.Category != criteria.Category {
			continue
		}
		if term != "" && !matchesTerm(e, term) {
			continue
		}
		if criteria.DateRange != "" && criteria.DateRange != domain.RangeAll && !inRange(e, criteria.DateRange, today) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Upcoming returns the earliest future-dated events, sorted ascending by
// calendar day and truncated to limit. Events dated before today or with an
// unparseable date never appear. Ties keep their input order.
func Upcoming(events []domain.Event, limit int, now time.Time) []domain.Event {
	today := midnight(now)

	type dated struct {
		event domain.Event
		day   time.Time
	}
	var future []dated
	for _, e := range events {
		day, ok := e.Day(now.Location())
		if !ok || day.Before(today) {
			continue
		}
		future = append(future, dated{event: e, day: day})
	}
	sort.SliceStable(future, func(i, j int) bool {
		return future[i].day.Before(future[j].day)
	})
	if limit >= 0 && len(future) > limit {
		future = future[:limit]
	}
	out := make([]domain.Event, len(future))
	for i, d := range future {
		out[i] = d.event
	}
	return out
}

// Displayable drops records that lack the fields the listing views require.
func Displayable(events []domain.Event) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e.ValidForDisplay() {
			out = append(out, e)
		}
	}
	return out
}

func matchesTerm(e domain.Event, term string) bool {
	return strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Description), term) ||
		strings.Contains(strings.ToLower(e.Location), term)
}

func inRange(e domain.Event, dateRange string, today time.Time) bool {
	day, ok := e.Day(today.Location())
	if !ok {
		return false
	}
	switch dateRange {
	case domain.RangeToday:
		return day.Equal(today)
	case domain.RangeWeek:
		return !day.Before(today) && !day.After(today.AddDate(0, 0, 7))
	case domain.RangeMonth:
		// Calendar-month arithmetic, not a fixed 30 days.
		return !day.Before(today) && !day.After(today.AddDate(0, 1, 0))
	}
	return false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
