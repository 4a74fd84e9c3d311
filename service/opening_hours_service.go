package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"opening-hours/api/calendar"
	"opening-hours/metrics"
	"opening-hours/models"
	"opening-hours/models/openinghours"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LOAD_TIMEOUT bounds a shared population of the weekly cache.
const LOAD_TIMEOUT = 30 * time.Second

// ErrEventNotFound is returned when no event of the current week has the requested id.
var ErrEventNotFound = errors.New("opening hours event not found")

// ApplicationDataSource provides the bulk data the application is bootstrapped with.
type ApplicationDataSource interface {
	Load(ctx context.Context) (openinghours.ApplicationData, error)
}

// OpeningHoursService owns the opening hours of the current week. The events
// are loaded once per ISO week, from the application data when it carries them
// and from the calendar otherwise, and are kept in sync with successful writes.
type OpeningHoursService struct {
	calendar calendar.CalendarAPI
	appData  ApplicationDataSource
	clock    Clock
	location *time.Location
	log      *zap.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	events []*openinghours.OpeningHoursEvent
	loaded bool
	week   time.Time
}

// NewOpeningHoursService constructs a new OpeningHoursService. location is
// the timezone the week boundaries are computed in.
func NewOpeningHoursService(
	calendarAPI calendar.CalendarAPI,
	appData ApplicationDataSource,
	clock Clock,
	location *time.Location,
	log *zap.Logger,
) *OpeningHoursService {
	return &OpeningHoursService{
		calendar: calendarAPI,
		appData:  appData,
		clock:    clock,
		location: location,
		log:      log,
	}
}

// Location returns the timezone the service works in.
func (s *OpeningHoursService) Location() *time.Location {
	return s.location
}

// GetForCurrentWeek returns the events of the current week, loading them on
// first use and again once the ISO week has turned. Concurrent first callers
// share a single load that outlives their own cancellation; a failed load is
// not remembered.
func (s *OpeningHoursService) GetForCurrentWeek(ctx context.Context) ([]*openinghours.OpeningHoursEvent, error) {
	week := s.currentWeek()
	if events, ok := s.cached(week); ok {
		return events, nil
	}

	ch := s.group.DoChan(FormatInstant(week), func() (interface{}, error) {
		if events, ok := s.cached(week); ok {
			return events, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LOAD_TIMEOUT)
		defer cancel()
		events, err := s.load(loadCtx, week)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.events = events
		s.loaded = true
		s.week = week
		s.mu.Unlock()

		events, _ = s.cached(week)
		return events, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*openinghours.OpeningHoursEvent), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// currentWeek is Monday 00:00 of the week the clock is in, in the service location.
func (s *OpeningHoursService) currentWeek() time.Time {
	return StartOfIsoWeek(s.clock.Now().In(s.location))
}

func (s *OpeningHoursService) cached(week time.Time) ([]*openinghours.OpeningHoursEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded || !s.week.Equal(week) {
		return nil, false
	}
	out := make([]*openinghours.OpeningHoursEvent, len(s.events))
	copy(out, s.events)
	return out, true
}

func (s *OpeningHoursService) load(ctx context.Context, monday time.Time) ([]*openinghours.OpeningHoursEvent, error) {
	data, err := s.appData.Load(ctx)
	if err != nil {
		s.log.Warn("[OpeningHoursService] Application data unavailable, querying calendar", zap.Error(err))
	} else if data.OpeningHours != nil {
		s.log.Info("[OpeningHoursService] Loaded opening hours from application data",
			zap.Int("events", len(data.OpeningHours)))
		metrics.IncCacheLoad(metrics.SourceApplicationData, metrics.ResultSuccess)
		return data.OpeningHours, nil
	}

	req := models.FindEventsRequest{
		Type:      openinghours.TYPE_OPENING_HOURS,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 7),
	}

	start := time.Now()
	events, err := s.calendar.FindAllBetweenStartDateAndEndDate(ctx, req)
	if err != nil {
		metrics.ObserveGateway("find", metrics.ResultError, time.Since(start))
		metrics.IncCacheLoad(metrics.SourceCalendar, metrics.ResultError)
		return nil, fmt.Errorf("failed to load opening hours for week of %s: %w", FormatInstant(monday), err)
	}
	metrics.ObserveGateway("find", metrics.ResultSuccess, time.Since(start))
	metrics.IncCacheLoad(metrics.SourceCalendar, metrics.ResultSuccess)

	if events == nil {
		events = []*openinghours.OpeningHoursEvent{}
	}
	s.log.Info("[OpeningHoursService] Loaded opening hours from calendar",
		zap.Int("events", len(events)), zap.String("week", FormatInstant(monday)))
	return events, nil
}

// Update creates the event when it has no id and updates it otherwise. An
// event returned by the calendar joins the current week, once loaded, and is
// returned; the calendar may answer without one, in which case nil is returned.
func (s *OpeningHoursService) Update(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx calendar.EditContext) (*openinghours.OpeningHoursEvent, error) {
	op, write := "create", s.calendar.Create
	if event.IsPersisted() {
		op, write = "update", s.calendar.Update
	}

	start := time.Now()
	result, err := write(ctx, event, editCtx)
	if err != nil {
		metrics.ObserveGateway(op, metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to %s opening hours event: %w", op, err)
	}
	metrics.ObserveGateway(op, metrics.ResultSuccess, time.Since(start))

	if result != nil {
		s.mu.Lock()
		if s.loaded && s.week.Equal(s.currentWeek()) {
			s.events = append(s.events, result)
		}
		s.mu.Unlock()
	}
	s.log.Debug("[OpeningHoursService] Event written", zap.String("op", op), zap.Bool("returned", result != nil))
	return result, nil
}

// Delete removes the event from the calendar and then this exact instance
// from the current week. Instances that are not part of the week are ignored.
func (s *OpeningHoursService) Delete(ctx context.Context, event *openinghours.OpeningHoursEvent) error {
	start := time.Now()
	if err := s.calendar.Delete(ctx, event); err != nil {
		metrics.ObserveGateway("delete", metrics.ResultError, time.Since(start))
		return fmt.Errorf("failed to delete opening hours event: %w", err)
	}
	metrics.ObserveGateway("delete", metrics.ResultSuccess, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.events {
		if e == event {
			s.events = append(s.events[:i:i], s.events[i+1:]...)
			break
		}
	}
	return nil
}

// Days returns copies of the current week bucketed per ISO weekday.
func (s *OpeningHoursService) Days(ctx context.Context) ([]openinghours.Day, error) {
	events, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ToDays(events, s.location), nil
}

// Snapshot returns UTC copies of the current week's events, safe to read
// while slots are being edited.
func (s *OpeningHoursService) Snapshot(ctx context.Context) ([]*openinghours.OpeningHoursEvent, error) {
	events, err := s.GetForCurrentWeek(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*openinghours.OpeningHoursEvent, 0, len(events))
	for _, e := range events {
		out = append(out, copyEvent(e))
	}
	return out, nil
}

// Copy returns a UTC copy of a tracked event read under the cache lock.
func (s *OpeningHoursService) Copy(event *openinghours.OpeningHoursEvent) *openinghours.OpeningHoursEvent {
	if event == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvent(event)
}

// EventTimes reads the instants of a tracked event under the cache lock.
func (s *OpeningHoursService) EventTimes(event *openinghours.OpeningHoursEvent) (start, end time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return event.Start, event.End
}

func copyEvent(e *openinghours.OpeningHoursEvent) *openinghours.OpeningHoursEvent {
	cp := *e
	cp.Start = cp.Start.UTC()
	cp.End = cp.End.UTC()
	return &cp
}

// OpenAt reports whether now falls inside one of the current week's events.
func (s *OpeningHoursService) OpenAt(ctx context.Context, now time.Time) (bool, error) {
	events, err := s.GetForCurrentWeek(ctx)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsOpenAt(events, now), nil
}

// NextOpening returns the next weekly recurrence of a slot start after now.
func (s *OpeningHoursService) NextOpening(ctx context.Context, now time.Time) (time.Time, bool, error) {
	events, err := s.GetForCurrentWeek(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NextOpeningAfter(events, now, s.location)
}

// Find returns the event of the current week with the given id.
func (s *OpeningHoursService) Find(ctx context.Context, id string) (*openinghours.OpeningHoursEvent, error) {
	events, err := s.GetForCurrentWeek(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("event %q: %w", id, ErrEventNotFound)
}

// SetEventTimes updates the instants of a tracked event under the cache lock.
func (s *OpeningHoursService) SetEventTimes(event *openinghours.OpeningHoursEvent, start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Start = start
	event.End = end
}
