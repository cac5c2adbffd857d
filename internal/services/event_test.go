package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"faithconnect/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBrowseService(store *fakeEventStore) *eventService {
	svc := NewEventService(store, 2*time.Second).(*eventService)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)
	}
	return svc
}

func TestBrowse_AppliesCriteria(t *testing.T) {
	store := newFakeEventStore()
	for _, e := range []domain.Event{
		{Title: "Charity Gala", Date: "2026-03-11", Category: domain.CategoryCharity, Location: "Hall", Description: "d"},
		{Title: "Study Circle", Date: "2026-03-11", Category: domain.CategoryEducational, Location: "Library", Description: "d"},
	} {
		e := e
		require.NoError(t, store.Insert(context.Background(), &e))
	}
	svc := newBrowseService(store)

	got, err := svc.Browse(context.Background(), domain.FilterCriteria{Category: domain.CategoryCharity})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Charity Gala", got[0].Title)
}

func TestBrowse_DropsInvalidRecords(t *testing.T) {
	store := newFakeEventStore()
	e := domain.Event{Title: "Valid", Date: "2026-03-11", Category: domain.CategorySocial, Location: "Hall", Description: "d"}
	require.NoError(t, store.Insert(context.Background(), &e))
	store.mu.Lock()
	store.byID["ev-1"] = domain.Event{ID: "ev-1"} // title wiped, e.g. malformed document
	store.mu.Unlock()
	svc := newBrowseService(store)

	got, err := svc.Browse(context.Background(), domain.FilterCriteria{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBrowse_ReadFailure(t *testing.T) {
	store := newFakeEventStore()
	store.listErr = errors.New("store down")
	svc := newBrowseService(store)

	_, err := svc.Browse(context.Background(), domain.FilterCriteria{})
	assert.ErrorIs(t, err, domain.ErrReadFailed)
}

func TestUpcoming_SortedAndLimited(t *testing.T) {
	store := newFakeEventStore()
	for _, e := range []domain.Event{
		{Title: "Far", Date: "2026-04-20", Category: domain.CategorySocial, Location: "A", Description: "d"},
		{Title: "Past", Date: "2026-03-01", Category: domain.CategorySocial, Location: "B", Description: "d"},
		{Title: "Soon", Date: "2026-03-12", Category: domain.CategorySocial, Location: "C", Description: "d"},
		{Title: "Mid", Date: "2026-03-20", Category: domain.CategorySocial, Location: "D", Description: "d"},
	} {
		e := e
		require.NoError(t, store.Insert(context.Background(), &e))
	}
	svc := newBrowseService(store)

	got, err := svc.Upcoming(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Soon", got[0].Title)
	assert.Equal(t, "Mid", got[1].Title)
}
