package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"faithconnect/internal/domain"
	"faithconnect/internal/filter"
)

// SessionState is the admin controller's lifecycle state.
type SessionState int

const (
	LoggedOut SessionState = iota
	Authenticating
	LoggedIn
	LoggingOut
)

func (s SessionState) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case Authenticating:
		return "authenticating"
	case LoggedIn:
		return "logged_in"
	case LoggingOut:
		return "logging_out"
	}
	return "unknown"
}

// AdminController orchestrates the admin session lifecycle and event
// mutations: login against the auth service gated by the admin allow-list,
// session persistence across restarts, and add/delete with a full snapshot
// re-fetch after every mutation.
//
// At most one mutating operation may be in flight at a time; a second call
// while one is pending is rejected with ErrOperationInProgress. Snapshot
// fetches may overlap; only the most recently started fetch publishes its
// result (stale responses are discarded).
type AdminController struct {
	auth     domain.AuthService
	events   domain.EventRepository
	sessions domain.SessionStore
	verifier domain.TokenVerifier
	logger   *slog.Logger

	mu       sync.Mutex
	state    SessionState
	identity domain.Identity
	snapshot []domain.Event
	fetchGen uint64
	mutating bool
}

// NewAdminController wires the controller. Restore must be called once at
// startup to pick up a persisted session.
func NewAdminController(auth domain.AuthService, events domain.EventRepository, sessions domain.SessionStore, verifier domain.TokenVerifier, logger *slog.Logger) *AdminController {
	return &AdminController{
		auth:     auth,
		events:   events,
		sessions: sessions,
		verifier: verifier,
		logger:   logger,
		state:    LoggedOut,
	}
}

// State returns the current session state.
func (c *AdminController) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the current admin identity; zero when logged out.
func (c *AdminController) Identity() domain.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Events returns a copy of the currently displayed snapshot.
func (c *AdminController) Events() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Event, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// Login authenticates the credentials and enters LoggedIn on success.
// An identity that authenticates but is absent from the admin allow-list is
// signed back out immediately and reported as ErrNotAnAdmin, so no
// partially-authenticated state survives. Entering LoggedIn persists the
// identity and triggers a snapshot fetch.
func (c *AdminController) Login(ctx context.Context, email, password string) error {
	c.mu.Lock()
	if c.state != LoggedOut {
		state := c.state
		c.mu.Unlock()
		if state == Authenticating {
			return domain.ErrOperationInProgress
		}
		return fmt.Errorf("login from state %s: %w", state, domain.ErrInvalidInput)
	}
	c.state = Authenticating
	c.mu.Unlock()

	identity, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		c.setState(LoggedOut)
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("sign in: %w", err)
	}

	isAdmin, err := c.auth.IsAdmin(ctx, identity)
	if err != nil {
		c.revoke(ctx, identity)
		c.setState(LoggedOut)
		return fmt.Errorf("admin check: %w", err)
	}
	if !isAdmin {
		// Revoke before reporting so no session persists.
		c.revoke(ctx, identity)
		c.setState(LoggedOut)
		return domain.ErrNotAnAdmin
	}

	if err := c.sessions.Save(identity); err != nil {
		c.logger.Warn("failed to persist session", "err", err)
	}

	c.mu.Lock()
	c.state = LoggedIn
	c.identity = identity
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("post-login fetch failed", "err", err)
	}
	return nil
}

// Logout signs the identity out, clears the persisted session, and returns
// to LoggedOut. The local session always ends even if the provider call fails.
func (c *AdminController) Logout(ctx context.Context) error {
	c.mu.Lock()
	if c.state != LoggedIn {
		c.mu.Unlock()
		return domain.ErrNotLoggedIn
	}
	c.state = LoggingOut
	identity := c.identity
	c.mu.Unlock()

	signOutErr := c.auth.SignOut(ctx, identity)
	if err := c.sessions.Clear(); err != nil {
		c.logger.Warn("failed to clear persisted session", "err", err)
	}

	c.mu.Lock()
	c.state = LoggedOut
	c.identity = domain.Identity{}
	c.mu.Unlock()

	if signOutErr != nil {
		return fmt.Errorf("sign out: %w", signOutErr)
	}
	return nil
}

// Restore attempts to resume a persisted session at startup. A slot whose
// token no longer verifies is cleared and the controller stays LoggedOut;
// that is not an error. A restored session triggers a snapshot fetch.
func (c *AdminController) Restore(ctx context.Context) error {
	identity, ok, err := c.sessions.Load()
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}
	if !ok {
		return nil
	}
	if _, err := c.verifier.Verify(identity.Token); err != nil {
		c.logger.Info("discarding stale persisted session")
		if err := c.sessions.Clear(); err != nil {
			c.logger.Warn("failed to clear stale session", "err", err)
		}
		return nil
	}

	c.mu.Lock()
	c.state = LoggedIn
	c.identity = identity
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("post-restore fetch failed", "err", err)
	}
	return nil
}

// AddEvent validates the draft, writes it to the store, and re-fetches the
// full snapshot. The created event is never appended locally; the snapshot
// after the re-fetch carries the server-assigned fields.
func (c *AdminController) AddEvent(ctx context.Context, draft domain.Event) error {
	if err := c.requireLoggedIn(); err != nil {
		return err
	}
	if err := validateDraft(&draft); err != nil {
		return err
	}
	if err := c.beginMutation(); err != nil {
		return err
	}
	defer c.endMutation()

	if err := c.events.Insert(ctx, &draft); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("post-add fetch failed", "err", err)
	}
	return nil
}

// DeleteEvent removes the event with the given id. The confirmed flag is the
// caller's yes/no gate for this irreversible action; without it nothing is
// sent to the store. Deleting an id that is already absent succeeds. On
// failure the pre-delete snapshot remains displayed.
func (c *AdminController) DeleteEvent(ctx context.Context, id string, confirmed bool) error {
	if err := c.requireLoggedIn(); err != nil {
		return err
	}
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := c.beginMutation(); err != nil {
		return err
	}
	defer c.endMutation()

	if err := c.events.DeleteByID(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("post-delete fetch failed", "err", err)
	}
	return nil
}

// Refresh fetches the full event snapshot. Overlapping calls are resolved by
// a generation counter: a fetch only publishes its result if no newer fetch
// started after it, so a slow stale response never replaces fresher data.
func (c *AdminController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.fetchGen++
	gen := c.fetchGen
	c.mu.Unlock()

	events, err := c.events.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReadFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.fetchGen {
		// A newer fetch started after this one; drop the stale result.
		return nil
	}
	c.snapshot = filter.Displayable(events)
	return nil
}

func (c *AdminController) requireLoggedIn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != LoggedIn {
		return domain.ErrNotLoggedIn
	}
	return nil
}

func (c *AdminController) beginMutation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mutating {
		return domain.ErrOperationInProgress
	}
	c.mutating = true
	return nil
}

func (c *AdminController) endMutation() {
	c.mu.Lock()
	c.mutating = false
	c.mu.Unlock()
}

func (c *AdminController) setState(s SessionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *AdminController) revoke(ctx context.Context, identity domain.Identity) {
	if err := c.auth.SignOut(ctx, identity); err != nil {
		c.logger.Warn("failed to revoke session", "err", err)
	}
}

// validateDraft applies the create-form rules: title, date, location, and
// description are required; the category defaults to Religious and must be
// one of the known values; the date must be a real calendar date.
func validateDraft(draft *domain.Event) error {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Date = strings.TrimSpace(draft.Date)
	draft.Location = strings.TrimSpace(draft.Location)
	draft.Description = strings.TrimSpace(draft.Description)
	draft.PosterURL = strings.TrimSpace(draft.PosterURL)

	if draft.Category == "" {
		draft.Category = domain.CategoryReligious
	}

	var missing []string
	if draft.Title == "" {
		missing = append(missing, "title")
	}
	if draft.Date == "" {
		missing = append(missing, "date")
	}
	if draft.Location == "" {
		missing = append(missing, "location")
	}
	if draft.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if _, err := time.ParseInLocation(domain.DateLayout, draft.Date, time.Local); err != nil {
		return fmt.Errorf("%w: date must be a calendar date (yyyy-mm-dd)", domain.ErrInvalidInput)
	}
	if !domain.KnownCategory(draft.Category) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, draft.Category)
	}
	return nil
}
