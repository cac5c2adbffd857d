// Package present derives display-ready attributes from raw event records:
// formatted dates, category color schemes, poster image state, and
// description truncation. Derivations never mutate the underlying event and
// never fail; malformed input degrades to placeholders.
package present

import (
	"strings"
	"sync"
	"time"

	"faithconnect/internal/domain"
)

// Placeholders used when an event lacks the corresponding field.
const (
	PlaceholderDate        = "Date TBA"
	PlaceholderLocation    = "Location TBA"
	PlaceholderDescription = "No description available"
)

// TruncateThreshold is the description length above which the card view
// offers expand/collapse.
const TruncateThreshold = 100

// ColorScheme is the styling triple for a category badge and accent bar.
type ColorScheme struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

var categoryColors = map[string]ColorScheme{
	domain.CategoryReligious:   {Background: "purple-100", Text: "purple-800", Accent: "purple-500"},
	domain.CategoryCharity:     {Background: "green-100", Text: "green-800", Accent: "green-500"},
	domain.CategorySocial:      {Background: "blue-100", Text: "blue-800", Accent: "blue-500"},
	domain.CategoryEducational: {Background: "yellow-100", Text: "yellow-800", Accent: "yellow-500"},
	domain.CategoryCultural:    {Background: "pink-100", Text: "pink-800", Accent: "pink-500"},
	domain.CategoryCommunity:   {Background: "indigo-100", Text: "indigo-800", Accent: "indigo-500"},
}

var neutralColors = ColorScheme{Background: "gray-100", Text: "gray-800", Accent: "gray-500"}

// Colors maps a category to its color scheme. Any value outside the known
// set maps to the neutral scheme, never an error.
func Colors(category string) ColorScheme {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return neutralColors
}

// FormatDate renders the event date as a short weekday form, e.g.
// "Tue, Mar 10, 2026". Unparseable dates yield PlaceholderDate.
func FormatDate(e domain.Event) string {
	day, ok := e.Day(time.Local)
	if !ok {
		return PlaceholderDate
	}
	return day.Format("Mon, Jan 2, 2006")
}

// FormatDateLong renders the event date in the long form used by the
// featured section, e.g. "Tuesday, March 10, 2026".
func FormatDateLong(e domain.Event) string {
	day, ok := e.Day(time.Local)
	if !ok {
		return PlaceholderDate
	}
	return day.Format("Monday, January 2, 2006")
}

// ImageState describes how the view should render an event poster.
type ImageState struct {
	URL      string `json:"url,omitempty"`
	Fallback bool   `json:"fallback"`
}

// ImageTracker remembers poster URLs that failed to load within a rendering
// session. A failed URL is never retried for the lifetime of the tracker.
// Safe for concurrent use.
type ImageTracker struct {
	mu     sync.Mutex
	failed map[string]struct{}
}

// NewImageTracker returns an empty tracker for one rendering session.
func NewImageTracker() *ImageTracker {
	return &ImageTracker{failed: make(map[string]struct{})}
}

// MarkFailed records that a load attempt for url failed. The transition is
// one-way for this tracker.
func (t *ImageTracker) MarkFailed(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed[url] = struct{}{}
}

// State returns the image state for the event's poster. Fallback whenever the
// URL is empty or whitespace-only, or a prior load of it failed; a fallback
// never triggers a network load.
func (t *ImageTracker) State(e domain.Event) ImageState {
	url := strings.TrimSpace(e.PosterURL)
	if url == "" {
		return ImageState{Fallback: true}
	}
	t.mu.Lock()
	_, failed := t.failed[url]
	t.mu.Unlock()
	if failed {
		return ImageState{Fallback: true}
	}
	return ImageState{URL: url}
}

// Truncate returns the description cut to maxChars with an ellipsis marker,
// and whether truncation applied. Descriptions at or under the limit come
// back unchanged. The cut counts runes so multi-byte text is never split.
func Truncate(description string, maxChars int) (string, bool) {
	runes := []rune(description)
	if len(runes) <= maxChars {
		return description, false
	}
	return string(runes[:maxChars]) + "...", true
}

// Card is the display-ready projection of a single event.
type Card struct {
	Event         domain.Event `json:"event"`
	FormattedDate string       `json:"formattedDate"`
	Colors        ColorScheme  `json:"colors"`
	Image         ImageState   `json:"image"`
	Location      string       `json:"location"`
	Description   string       `json:"description"`
	Expandable    bool         `json:"expandable"`
}

// NewCard derives the card view for an event using the given tracker for
// poster image state.
func NewCard(e domain.Event, tracker *ImageTracker) Card {
	location := e.Location
	if strings.TrimSpace(location) == "" {
		location = PlaceholderLocation
	}
	description, expandable := Truncate(e.Description, TruncateThreshold)
	if strings.TrimSpace(description) == "" {
		description = PlaceholderDescription
	}
	return Card{
		Event:         e,
		FormattedDate: FormatDate(e),
		Colors:        Colors(e.Category),
		Image:         tracker.State(e),
		Location:      location,
		Description:   description,
		Expandable:    expandable,
	}
}
