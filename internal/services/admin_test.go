package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"faithconnect/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAuth implements domain.AuthService for controller tests.
type fakeAuth struct {
	identity   domain.Identity
	signInErr  error
	isAdmin    bool
	isAdminErr error
	signOutErr error
	signedOut  []domain.Identity
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	if f.signInErr != nil {
		return domain.Identity{}, f.signInErr
	}
	return f.identity, nil
}

func (f *fakeAuth) SignOut(ctx context.Context, identity domain.Identity) error {
	f.signedOut = append(f.signedOut, identity)
	return f.signOutErr
}

func (f *fakeAuth) IsAdmin(ctx context.Context, identity domain.Identity) (bool, error) {
	return f.isAdmin, f.isAdminErr
}

// fakeEventStore is an in-memory EventRepository with per-call hooks for
// concurrency tests.
type fakeEventStore struct {
	mu        sync.Mutex
	byID      map[string]domain.Event
	order     []string
	nextID    int
	insertErr error
	deleteErr error
	listErr   error

	// Optional gates; when set, the corresponding call blocks until the
	// channel is closed. started is closed once the call has begun.
	insertGate    chan struct{}
	insertStarted chan struct{}
	listAllFn     func(ctx context.Context) ([]domain.Event, error)
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{byID: make(map[string]domain.Event), nextID: 1}
}

func (f *fakeEventStore) Insert(ctx context.Context, e *domain.Event) error {
	if f.insertStarted != nil {
		close(f.insertStarted)
		f.insertStarted = nil
	}
	if f.insertGate != nil {
		<-f.insertGate
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = *e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeEventStore) ListAll(ctx context.Context) ([]domain.Event, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Event, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byID[id])
	}
	return out, nil
}

func (f *fakeEventStore) DeleteByID(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// fakeSessionStore is an in-memory single-slot SessionStore.
type fakeSessionStore struct {
	identity domain.Identity
	saved    bool
	saveErr  error
	loadErr  error
}

func (f *fakeSessionStore) Save(identity domain.Identity) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.identity = identity
	f.saved = true
	return nil
}

func (f *fakeSessionStore) Load() (domain.Identity, bool, error) {
	if f.loadErr != nil {
		return domain.Identity{}, false, f.loadErr
	}
	return f.identity, f.saved, nil
}

func (f *fakeSessionStore) Clear() error {
	f.identity = domain.Identity{}
	f.saved = false
	return nil
}

// fakeVerifier accepts every token unless err is set.
type fakeVerifier struct {
	id  string
	err error
}

func (f *fakeVerifier) Verify(token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func adminIdentity() domain.Identity {
	return domain.Identity{ID: "admin-1", Email: "admin@example.com", Token: "tok"}
}

func newTestController(auth *fakeAuth, store *fakeEventStore, sessions *fakeSessionStore) *AdminController {
	return NewAdminController(auth, store, sessions, &fakeVerifier{id: "admin-1"}, testLogger())
}

func seedEvents(store *fakeEventStore, titles ...string) {
	for _, title := range titles {
		e := domain.Event{Title: title, Date: "2030-01-01", Category: domain.CategorySocial, Location: "Hall", Description: "d"}
		_ = store.Insert(context.Background(), &e)
	}
}

func TestLogin_Success(t *testing.T) {
	auth := &fakeAuth{identity: adminIdentity(), isAdmin: true}
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	sessions := &fakeSessionStore{}
	c := newTestController(auth, store, sessions)

	require.NoError(t, c.Login(context.Background(), "admin@example.com", "pw"))

	assert.Equal(t, LoggedIn, c.State())
	assert.Equal(t, adminIdentity(), c.Identity())
	assert.True(t, sessions.saved, "identity must be persisted on login")
	assert.Len(t, c.Events(), 1, "entering LoggedIn must trigger a fetch")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth := &fakeAuth{signInErr: domain.ErrInvalidCredentials}
	sessions := &fakeSessionStore{}
	c := newTestController(auth, newFakeEventStore(), sessions)

	err := c.Login(context.Background(), "admin@example.com", "wrong")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, LoggedOut, c.State())
	assert.False(t, sessions.saved)
}

func TestLogin_NotAnAdminRevokesSession(t *testing.T) {
	auth := &fakeAuth{identity: adminIdentity(), isAdmin: false}
	sessions := &fakeSessionStore{}
	c := newTestController(auth, newFakeEventStore(), sessions)

	err := c.Login(context.Background(), "user@example.com", "pw")

	assert.ErrorIs(t, err, domain.ErrNotAnAdmin)
	assert.Equal(t, LoggedOut, c.State())
	require.Len(t, auth.signedOut, 1, "the fresh session must be signed out before reporting")
	assert.Equal(t, adminIdentity(), auth.signedOut[0])
	assert.False(t, sessions.saved, "no partially-authenticated state may persist")

	// A subsequent restore finds nothing.
	require.NoError(t, c.Restore(context.Background()))
	assert.Equal(t, LoggedOut, c.State())
}

func TestLogin_WhileLoggedIn(t *testing.T) {
	auth := &fakeAuth{identity: adminIdentity(), isAdmin: true}
	c := newTestController(auth, newFakeEventStore(), &fakeSessionStore{})
	require.NoError(t, c.Login(context.Background(), "admin@example.com", "pw"))

	err := c.Login(context.Background(), "admin@example.com", "pw")
	assert.Error(t, err)
	assert.Equal(t, LoggedIn, c.State())
}

func TestLogout_ClearsPersistedSession(t *testing.T) {
	auth := &fakeAuth{identity: adminIdentity(), isAdmin: true}
	sessions := &fakeSessionStore{}
	c := newTestController(auth, newFakeEventStore(), sessions)
	require.NoError(t, c.Login(context.Background(), "admin@example.com", "pw"))

	require.NoError(t, c.Logout(context.Background()))

	assert.Equal(t, LoggedOut, c.State())
	assert.Equal(t, domain.Identity{}, c.Identity())
	assert.False(t, sessions.saved)
	assert.NotEmpty(t, auth.signedOut)
}

func TestLogout_WhenLoggedOut(t *testing.T) {
	c := newTestController(&fakeAuth{}, newFakeEventStore(), &fakeSessionStore{})
	assert.ErrorIs(t, c.Logout(context.Background()), domain.ErrNotLoggedIn)
}

func TestRestore_ValidPersistedSession(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Picnic", "Gala")
	sessions := &fakeSessionStore{identity: adminIdentity(), saved: true}
	c := newTestController(&fakeAuth{}, store, sessions)

	require.NoError(t, c.Restore(context.Background()))

	assert.Equal(t, LoggedIn, c.State())
	assert.Equal(t, adminIdentity(), c.Identity())
	assert.Len(t, c.Events(), 2, "restore must trigger a fetch")
}

func TestRestore_StaleTokenClearsSlot(t *testing.T) {
	sessions := &fakeSessionStore{identity: adminIdentity(), saved: true}
	c := NewAdminController(&fakeAuth{}, newFakeEventStore(), sessions, &fakeVerifier{err: errors.New("expired")}, testLogger())

	require.NoError(t, c.Restore(context.Background()))

	assert.Equal(t, LoggedOut, c.State())
	assert.False(t, sessions.saved, "stale slot must be cleared")
}

func TestRestore_EmptySlot(t *testing.T) {
	c := newTestController(&fakeAuth{}, newFakeEventStore(), &fakeSessionStore{})
	require.NoError(t, c.Restore(context.Background()))
	assert.Equal(t, LoggedOut, c.State())
}

func loggedInController(t *testing.T, store *fakeEventStore) *AdminController {
	t.Helper()
	auth := &fakeAuth{identity: adminIdentity(), isAdmin: true}
	c := newTestController(auth, store, &fakeSessionStore{})
	require.NoError(t, c.Login(context.Background(), "admin@example.com", "pw"))
	return c
}

func TestAddEvent_RequiresLogin(t *testing.T) {
	c := newTestController(&fakeAuth{}, newFakeEventStore(), &fakeSessionStore{})
	err := c.AddEvent(context.Background(), domain.Event{Title: "Gala"})
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestAddEvent_Validation(t *testing.T) {
	store := newFakeEventStore()
	c := loggedInController(t, store)

	tests := []struct {
		name  string
		draft domain.Event
	}{
		{name: "missing title", draft: domain.Event{Date: "2030-01-01", Location: "Hall", Description: "d"}},
		{name: "missing date", draft: domain.Event{Title: "Gala", Location: "Hall", Description: "d"}},
		{name: "missing location", draft: domain.Event{Title: "Gala", Date: "2030-01-01", Description: "d"}},
		{name: "missing description", draft: domain.Event{Title: "Gala", Date: "2030-01-01", Location: "Hall"}},
		{name: "whitespace only", draft: domain.Event{Title: "  ", Date: "2030-01-01", Location: "Hall", Description: "d"}},
		{name: "malformed date", draft: domain.Event{Title: "Gala", Date: "soon", Location: "Hall", Description: "d"}},
		{name: "unknown category", draft: domain.Event{Title: "Gala", Date: "2030-01-01", Category: "Mystery", Location: "Hall", Description: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddEvent(context.Background(), tt.draft)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, c.Events(), "nothing may reach the store on validation failure")
		})
	}
}

func TestAddEvent_DefaultsCategoryAndRefetches(t *testing.T) {
	store := newFakeEventStore()
	c := loggedInController(t, store)

	draft := domain.Event{Title: "Gala", Date: "2030-01-01", Location: "Hall", Description: "d"}
	require.NoError(t, c.AddEvent(context.Background(), draft))

	events := c.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.CategoryReligious, events[0].Category)
	assert.NotEmpty(t, events[0].ID, "snapshot must carry the store-assigned id")
}

func TestAddEvent_WriteFailureLeavesSnapshot(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Existing")
	c := loggedInController(t, store)
	store.insertErr = errors.New("write refused")

	err := c.AddEvent(context.Background(), domain.Event{Title: "Gala", Date: "2030-01-01", Location: "Hall", Description: "d"})

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Len(t, c.Events(), 1, "displayed list keeps the pre-mutation snapshot")
}

func TestDeleteEvent_RequiresConfirmation(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	c := loggedInController(t, store)

	err := c.DeleteEvent(context.Background(), "ev-1", false)

	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.Len(t, c.Events(), 1, "nothing may be deleted without the gate")
}

func TestDeleteEvent_Confirmed(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala", "Picnic")
	c := loggedInController(t, store)

	require.NoError(t, c.DeleteEvent(context.Background(), "ev-1", true))

	events := c.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Picnic", events[0].Title)
}

func TestDeleteEvent_AbsentIDSucceedsIdempotently(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	c := loggedInController(t, store)

	require.NoError(t, c.DeleteEvent(context.Background(), "ev-1", true))
	require.NoError(t, c.DeleteEvent(context.Background(), "ev-1", true))
	assert.Empty(t, c.Events())
}

func TestDeleteEvent_StoreFailureKeepsList(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	c := loggedInController(t, store)
	store.deleteErr = errors.New("store down")

	err := c.DeleteEvent(context.Background(), "ev-1", true)

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Len(t, c.Events(), 1, "no optimistic removal on failure")
}

func TestMutations_SingleFlight(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	c := loggedInController(t, store)

	gate := make(chan struct{})
	started := make(chan struct{})
	store.insertGate = gate
	store.insertStarted = started

	done := make(chan error, 1)
	go func() {
		done <- c.AddEvent(context.Background(), domain.Event{Title: "Slow", Date: "2030-01-01", Location: "Hall", Description: "d"})
	}()

	<-started
	err := c.DeleteEvent(context.Background(), "ev-1", true)
	assert.ErrorIs(t, err, domain.ErrOperationInProgress, "second mutation while one is pending is rejected, not queued")

	close(gate)
	require.NoError(t, <-done)

	// After the first completes, mutations are accepted again.
	require.NoError(t, c.DeleteEvent(context.Background(), "ev-1", true))
}

func TestRefresh_LastStartedFetchWins(t *testing.T) {
	store := newFakeEventStore()
	c := loggedInController(t, store)

	stale := []domain.Event{{ID: "old", Title: "Old snapshot"}}
	fresh := []domain.Event{{ID: "new", Title: "Fresh snapshot"}}

	release := make(chan struct{})
	firstStarted := make(chan struct{})
	var call int
	var mu sync.Mutex
	store.listAllFn = func(ctx context.Context) ([]domain.Event, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-release // slow first fetch returns after the second
			return stale, nil
		}
		return fresh, nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-firstStarted

	require.NoError(t, c.Refresh(context.Background())) // newer fetch completes first
	close(release)
	require.NoError(t, <-done)

	events := c.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].ID, "a stale slow response must never replace fresher data")
}

func TestRefresh_ErrorKeepsSnapshot(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	c := loggedInController(t, store)
	store.listErr = errors.New("store down")

	err := c.Refresh(context.Background())

	assert.ErrorIs(t, err, domain.ErrReadFailed)
	assert.Len(t, c.Events(), 1)
}

func TestEvents_ReturnsCopy(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	c := loggedInController(t, store)

	events := c.Events()
	require.Len(t, events, 1)
	events[0].Title = "Mutated"

	assert.Equal(t, "Gala", c.Events()[0].Title)
}

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "logged_out", LoggedOut.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "logged_in", LoggedIn.String())
	assert.Equal(t, "logging_out", LoggingOut.String())
	assert.Equal(t, "unknown", SessionState(42).String())
}

// Refresh under many concurrent callers must neither deadlock nor publish
// out-of-order data for longer than the next fetch.
func TestRefresh_ConcurrentCallers(t *testing.T) {
	store := newFakeEventStore()
	seedEvents(store, "Gala")
	c := loggedInController(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Refresh(context.Background())
		}()
	}
	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent refreshes did not finish")
	}
	assert.Len(t, c.Events(), 1)
}
