package domain

import (
	"context"
	"strings"
	"time"
)

// Known event categories. The store does not enforce these; readers must
// tolerate any value and treat unknown ones as a default styling bucket.
const (
	CategoryReligious   = "Religious"
	CategorySocial      = "Social"
	CategoryCharity     = "Charity"
	CategoryEducational = "Educational"
	CategoryCultural    = "Cultural"
	CategoryCommunity   = "Community"
)

// Categories lists the known categories in form-display order.
var Categories = []string{
	CategoryReligious,
	CategorySocial,
	CategoryCharity,
	CategoryEducational,
	CategoryCultural,
	CategoryCommunity,
}

// KnownCategory reports whether c is one of the enumerated categories.
func KnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Event represents a listed community activity record.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"` // ISO calendar date, yyyy-mm-dd
	Category    string `json:"category"`
	Location    string `json:"location"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl"`
}

// ValidForDisplay reports whether the event carries the minimum fields the
// listing views require: a store-assigned id and a title.
func (e Event) ValidForDisplay() bool {
	return e.ID != "" && e.Title != ""
}

// DateLayout is the calendar-date layout events are stored with.
const DateLayout = "2006-01-02"

// Day parses the event date and normalizes it to local midnight in loc.
// ok is false when the date is missing or unparseable; such events are
// excluded from date-based filtering but never cause an error.
func (e Event) Day(loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(e.Date)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > len(DateLayout) {
		// Tolerate timestamps; only the calendar day matters.
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FilterCriteria is the ephemeral browse state applied to an event snapshot.
// Zero values ("" / "All" semantics handled by the filter) match everything.
type FilterCriteria struct {
	Category   string `json:"category"`   // exact category, or CategoryAll
	SearchTerm string `json:"searchTerm"` // substring of title/description/location
	DateRange  string `json:"dateRange"`  // one of the Range* values
}

// Category filter wildcard and date-range values.
const (
	CategoryAll = "All"

	RangeAll   = "all"
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// EventRepository defines the interface for event storage. ListAll always
// returns the full collection snapshot; there is no query pushdown.
type EventRepository interface {
	Insert(ctx context.Context, event *Event) error
	ListAll(ctx context.Context) ([]Event, error)
	DeleteByID(ctx context.Context, id string) error
}

// EventService defines the read-side business logic for browsing events.
type EventService interface {
	Browse(ctx context.Context, criteria FilterCriteria) ([]Event, error)
	Upcoming(ctx context.Context, limit int) ([]Event, error)
}
