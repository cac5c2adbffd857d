package controllers

import (
	"log/slog"
	"net/http"

	"faithconnect/internal/delivery/http/helpers"
	"faithconnect/internal/domain"
	"faithconnect/internal/services"
)

// AdminController exposes the authenticated management surface: sign-in and
// sign-out, the admin event snapshot, and the add/delete mutations.
type AdminController struct {
	Logger  *slog.Logger
	Session *services.AdminController
}

func NewAdminController(logger *slog.Logger, session *services.AdminController) *AdminController {
	return &AdminController{Logger: logger, Session: session}
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var problems []string
	if l.Email == "" {
		problems = append(problems, "email is required")
	}
	if l.Password == "" {
		problems = append(problems, "password is required")
	}
	return problems
}

// SessionResponse is the response body for login, session, and restore reads.
type SessionResponse struct {
	State    string          `json:"state"`
	Identity domain.Identity `json:"identity"`
}

// Login godoc
// @Summary Sign in as an admin
// @Description Authenticates the credentials and verifies admin status. Authenticated non-admin accounts are rejected and their session is revoked, so no partially signed-in state remains. On success the session is persisted and the admin event snapshot is fetched.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains the session state and identity with its bearer token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (authenticated but not an admin)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (a sign-in is already running)"
// @Router /auth/login [post]
func (c *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := c.Session.Login(r.Context(), req.Email, req.Password); err != nil {
		if !mapDomainError(w, err) {
			c.Logger.ErrorContext(r.Context(), "login failed", "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "login failed")
		}
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, SessionResponse{
		State:    c.Session.State().String(),
		Identity: c.Session.Identity(),
	})
}

// Logout godoc
// @Summary Sign out
// @Description Revokes the session with the auth provider and clears the persisted session. Local state is cleared even if the provider call fails.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the final session state"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/logout [post]
func (c *AdminController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.Session.Logout(r.Context()); err != nil {
		if !mapDomainError(w, err) {
			c.Logger.ErrorContext(r.Context(), "logout failed", "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "logout failed")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionResponse{State: c.Session.State().String()})
}

// GetSession godoc
// @Summary Inspect the admin session
// @Description Returns the current session state and, when signed in, the identity.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains state and identity"
// @Router /auth/session [get]
func (c *AdminController) GetSession(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{State: c.Session.State().String()}
	if c.Session.State() == services.LoggedIn {
		resp.Identity = c.Session.Identity()
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// AdminEventsResponse is the response body for GET /admin/events.
type AdminEventsResponse struct {
	Events []domain.Event `json:"events"`
	Count  int            `json:"count"`
}

// AdminEvents godoc
// @Summary List the admin event snapshot
// @Description Returns the snapshot fetched at sign-in and refreshed after every mutation.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains events and count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /admin/events [get]
func (c *AdminController) AdminEvents(w http.ResponseWriter, r *http.Request) {
	events := c.Session.Events()
	helpers.WriteJSONSuccess(w, http.StatusOK, AdminEventsResponse{Events: events, Count: len(events)})
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl"`
}

// Validate implements Validator. Field-level checks beyond presence live in
// the session controller, which owns the draft rules.
func (e CreateEventRequest) Validate() []string {
	if e.Title == "" && e.Date == "" && e.Location == "" && e.Description == "" {
		return []string{"event fields are required"}
	}
	return nil
}

// CreateEvent godoc
// @Summary Add an event
// @Description Validates the draft (title, date, location, description required; date must be YYYY-MM-DD; category must be known, defaulting when omitted), writes it to the store, and refetches the snapshot.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event draft"
// @Success 201 {object} helpers.APIResponse "data contains the refreshed events and count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (another mutation is running)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error (store write failed)"
// @Router /events [post]
func (c *AdminController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	draft := domain.Event{
		Title:       req.Title,
		Date:        req.Date,
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
		PosterURL:   req.PosterURL,
	}
	if err := c.Session.AddEvent(r.Context(), draft); err != nil {
		if !mapDomainError(w, err) {
			c.Logger.ErrorContext(r.Context(), "create event failed", "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "could not save event")
		}
		return
	}

	events := c.Session.Events()
	helpers.WriteJSONSuccess(w, http.StatusCreated, AdminEventsResponse{Events: events, Count: len(events)})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with the given id. The request must carry confirm=true; without it nothing is deleted. Deleting an id that is already gone succeeds. The snapshot is refetched afterwards.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param confirm query bool true "Must be true to actually delete"
// @Success 200 {object} helpers.APIResponse "data contains the refreshed events and count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (confirmation missing)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (another mutation is running)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error (store delete failed)"
// @Router /events/{eventID} [delete]
func (c *AdminController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("eventID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event id is required")
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := c.Session.DeleteEvent(r.Context(), id, confirmed); err != nil {
		if !mapDomainError(w, err) {
			c.Logger.ErrorContext(r.Context(), "delete event failed", "event_id", id, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "could not delete event")
		}
		return
	}

	events := c.Session.Events()
	helpers.WriteJSONSuccess(w, http.StatusOK, AdminEventsResponse{Events: events, Count: len(events)})
}
