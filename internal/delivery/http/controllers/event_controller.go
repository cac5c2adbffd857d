package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"faithconnect/internal/delivery/http/helpers"
	"faithconnect/internal/domain"
	"faithconnect/internal/present"
)

// DefaultUpcomingLimit is how many featured events the landing view shows.
const DefaultUpcomingLimit = 3

// EventController serves the public browse endpoints: filtered listings and
// the upcoming-events selector. It owns one image tracker for the lifetime
// of the process, so a poster URL reported as broken is not retried.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Images  *present.ImageTracker
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Images:  present.NewImageTracker(),
	}
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Events []domain.Event `json:"events,omitempty"`
	Cards  []present.Card `json:"cards,omitempty"`
	Count  int            `json:"count"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns the event collection filtered by the given criteria. Filtering happens on the full snapshot; results keep store order. With view=cards the response carries display-ready cards (formatted date, category colors, image state, truncated description) instead of raw events.
// @Tags events
// @Produce json
// @Param category query string false "Exact category, or All"
// @Param search query string false "Case-insensitive term matched against title, description, and location"
// @Param range query string false "One of: all, today, week, month"
// @Param view query string false "Set to cards for display-ready cards"
// @Success 200 {object} helpers.APIResponse "data contains events (or cards) and count"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := domain.FilterCriteria{
		Category:   q.Get("category"),
		SearchTerm: q.Get("search"),
		DateRange:  q.Get("range"),
	}

	events, err := c.Service.Browse(r.Context(), criteria)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "could not load events")
		return
	}

	if q.Get("view") == "cards" {
		cards := make([]present.Card, len(events))
		for i, e := range events {
			cards[i] = present.NewCard(e, c.Images)
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Cards: cards, Count: len(cards)})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Events: events, Count: len(events)})
}

// UpcomingEvents godoc
// @Summary List upcoming events
// @Description Returns the earliest future-dated events sorted ascending by date, as display-ready cards. Past-dated and unparseable-date events never appear.
// @Tags events
// @Produce json
// @Param limit query int false "Maximum number of events (default 3)"
// @Success 200 {object} helpers.APIResponse "data contains cards and count"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/upcoming [get]
func (c *EventController) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	limit := DefaultUpcomingLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			limit = v
		}
	}

	events, err := c.Service.Upcoming(r.Context(), limit)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "could not load events")
		return
	}

	cards := make([]present.Card, len(events))
	for i, e := range events {
		cards[i] = present.NewCard(e, c.Images)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Cards: cards, Count: len(cards)})
}

// ReportPosterFailureRequest is the request body for POST /events/poster-failures.
type ReportPosterFailureRequest struct {
	URL string `json:"url"`
}

// Validate implements Validator.
func (p ReportPosterFailureRequest) Validate() []string {
	if p.URL == "" {
		return []string{"url is required"}
	}
	return nil
}

// ReportPosterFailure godoc
// @Summary Report a broken poster image
// @Description Marks a poster URL as failed for this rendering session. Subsequent cards referencing it render the fallback image instead of retrying.
// @Tags events
// @Accept json
// @Produce json
// @Param body body ReportPosterFailureRequest true "Failed poster URL"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events/poster-failures [post]
func (c *EventController) ReportPosterFailure(w http.ResponseWriter, r *http.Request) {
	var req ReportPosterFailureRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.Images.MarkFailed(req.URL)
	w.WriteHeader(http.StatusNoContent)
}

// mapDomainError translates service sentinels shared by several handlers.
func mapDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrConfirmationRequired):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrNotLoggedIn):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not logged in")
	case errors.Is(err, domain.ErrNotAnAdmin):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "access denied: you are not an admin")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrOperationInProgress):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "another operation is in progress")
	default:
		return false
	}
	return true
}
