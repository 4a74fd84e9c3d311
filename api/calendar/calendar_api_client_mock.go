package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"opening-hours/models"
	"opening-hours/models/openinghours"
	"opening-hours/util"

	"github.com/google/uuid"
)

const VIOLATION_END_LOWERBOUND = "end.lowerbound"

// CalendarApiClientMock is an in-memory calendar backend used outside prod and in tests.
// FindErr and WriteErr, when set, are returned by the corresponding calls.
type CalendarApiClientMock struct {
	mu        sync.Mutex
	namespace string
	events    []*openinghours.OpeningHoursEvent
	findCalls int

	FindErr  error
	WriteErr error
}

// NewCalendarApiClientMock creates a new instance of CalendarApiClientMock
func NewCalendarApiClientMock(namespace string) *CalendarApiClientMock {
	return &CalendarApiClientMock{namespace: namespace}
}

// LoadFromJSON seeds the backend with the events stored in filePath. Events
// without an id get a generated one.
func (c *CalendarApiClientMock) LoadFromJSON(filePath string) error {
	events, err := util.ReadOpeningHoursEventsFromJSON(filePath)
	if err != nil {
		return fmt.Errorf("could not seed calendar mock: %w", err)
	}
	c.Seed(events...)
	return nil
}

// Seed stores copies of events as if they had been created earlier.
func (c *CalendarApiClientMock) Seed(events ...*openinghours.OpeningHoursEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range events {
		stored := *e
		if stored.ID == "" {
			stored.ID = uuid.New().String()
		}
		if stored.Namespace == "" {
			stored.Namespace = c.namespace
		}
		c.events = append(c.events, &stored)
	}
}

// AlignToWeek moves every weekly event by whole weeks so that it starts in the
// week beginning at weekStart. Wall clock times are kept in weekStart's
// location; the moved instants are stored in UTC.
func (c *CalendarApiClientMock) AlignToWeek(weekStart time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc := weekStart.Location()
	for _, e := range c.events {
		if e.Recurrence != openinghours.RECURRENCE_WEEKLY {
			continue
		}
		start := e.Start.In(loc)
		days := civilDays(weekStart, start)
		weeks := days / 7
		if days < 0 && days%7 != 0 {
			weeks--
		}
		weeks = -weeks
		if weeks == 0 {
			continue
		}
		e.Start = start.AddDate(0, 0, 7*weeks).UTC()
		e.End = e.End.In(loc).AddDate(0, 0, 7*weeks).UTC()
	}
}

// civilDays counts calendar days from a to b, ignoring the time of day.
func civilDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// FindCalls returns how many range queries were served.
func (c *CalendarApiClientMock) FindCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findCalls
}

// Events returns copies of every stored event.
func (c *CalendarApiClientMock) Events() []*openinghours.OpeningHoursEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copies(func(*openinghours.OpeningHoursEvent) bool { return true })
}

func (c *CalendarApiClientMock) FindAllBetweenStartDateAndEndDate(ctx context.Context, req models.FindEventsRequest) ([]*openinghours.OpeningHoursEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findCalls++
	if c.FindErr != nil {
		return nil, c.FindErr
	}
	return c.copies(func(e *openinghours.OpeningHoursEvent) bool {
		return e.Type == req.Type && !e.Start.Before(req.StartDate) && e.Start.Before(req.EndDate)
	}), nil
}

// Create stores the event under a new id and returns the stored copy.
func (c *CalendarApiClientMock) Create(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx EditContext) (*openinghours.OpeningHoursEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	if err := validate(event, editCtx); err != nil {
		return nil, err
	}

	stored := *event
	stored.ID = uuid.New().String()
	if stored.Namespace == "" {
		stored.Namespace = c.namespace
	}
	c.events = append(c.events, &stored)

	created := stored
	return &created, nil
}

// Update replaces the stored event. Like the REST backend it answers without a
// payload, so the caller keeps its own instance.
func (c *CalendarApiClientMock) Update(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx EditContext) (*openinghours.OpeningHoursEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return nil, c.WriteErr
	}
	i := c.indexOf(event.ID)
	if i < 0 {
		return nil, fmt.Errorf("update %q: %w", event.ID, ErrNotFound)
	}
	if err := validate(event, editCtx); err != nil {
		return nil, err
	}

	stored := *event
	c.events[i] = &stored
	return nil, nil
}

func (c *CalendarApiClientMock) Delete(ctx context.Context, event *openinghours.OpeningHoursEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	i := c.indexOf(event.ID)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", event.ID, ErrNotFound)
	}
	c.events = append(c.events[:i], c.events[i+1:]...)
	return nil
}

func (c *CalendarApiClientMock) indexOf(id string) int {
	for i, e := range c.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (c *CalendarApiClientMock) copies(keep func(*openinghours.OpeningHoursEvent) bool) []*openinghours.OpeningHoursEvent {
	out := []*openinghours.OpeningHoursEvent{}
	for _, e := range c.events {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

func validate(event *openinghours.OpeningHoursEvent, editCtx EditContext) error {
	if !event.End.After(event.Start) {
		if editCtx != nil {
			editCtx.AddViolation(VIOLATION_END_LOWERBOUND)
		}
		return ErrRejected
	}
	return nil
}

var _ CalendarAPI = (*CalendarApiClientMock)(nil)
