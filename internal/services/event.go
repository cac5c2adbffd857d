package services

import (
	"context"
	"fmt"
	"time"

	"faithconnect/internal/domain"
	"faithconnect/internal/filter"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates the read-side EventService over the event store.
// Every read is a full snapshot; criteria are applied in memory.
func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) Browse(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadFailed, err)
	}
	return filter.Apply(filter.Displayable(events), criteria, s.now()), nil
}

func (s *eventService) Upcoming(ctx context.Context, limit int) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadFailed, err)
	}
	return filter.Upcoming(filter.Displayable(events), limit, s.now()), nil
}
