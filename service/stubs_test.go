package services

import (
	"context"
	"sync"
	"time"

	"opening-hours/api/calendar"
	"opening-hours/models"
	"opening-hours/models/openinghours"
)

type stubCalendar struct {
	mu sync.Mutex

	findGate   chan struct{}
	findResult []*openinghours.OpeningHoursEvent
	findErr    error
	findCalls  int
	lastFind   models.FindEventsRequest

	writeGate    chan struct{}
	createResult *openinghours.OpeningHoursEvent
	updateResult *openinghours.OpeningHoursEvent
	writeErr     error
	violations   []string
	created      []*openinghours.OpeningHoursEvent
	updated      []*openinghours.OpeningHoursEvent
	deleted      []*openinghours.OpeningHoursEvent
	lastEditCtx  calendar.EditContext
}

func (c *stubCalendar) FindAllBetweenStartDateAndEndDate(ctx context.Context, req models.FindEventsRequest) ([]*openinghours.OpeningHoursEvent, error) {
	c.mu.Lock()
	c.findCalls++
	c.lastFind = req
	gate := c.findGate
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.findResult, c.findErr
}

func (c *stubCalendar) Create(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx calendar.EditContext) (*openinghours.OpeningHoursEvent, error) {
	if c.writeGate != nil {
		<-c.writeGate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, event)
	c.lastEditCtx = editCtx
	return c.write(editCtx, c.createResult)
}

func (c *stubCalendar) Update(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx calendar.EditContext) (*openinghours.OpeningHoursEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updated = append(c.updated, event)
	c.lastEditCtx = editCtx
	return c.write(editCtx, c.updateResult)
}

func (c *stubCalendar) write(editCtx calendar.EditContext, result *openinghours.OpeningHoursEvent) (*openinghours.OpeningHoursEvent, error) {
	for _, v := range c.violations {
		editCtx.AddViolation(v)
	}
	if c.writeErr != nil {
		return nil, c.writeErr
	}
	return result, nil
}

func (c *stubCalendar) Delete(ctx context.Context, event *openinghours.OpeningHoursEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, event)
	return c.writeErr
}

func (c *stubCalendar) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findCalls
}

type stubAppData struct {
	data openinghours.ApplicationData
	err  error
}

func (s stubAppData) Load(ctx context.Context) (openinghours.ApplicationData, error) {
	return s.data, s.err
}

type recordingEditContext struct {
	violations []string
}

func (r *recordingEditContext) AddViolation(code string) {
	r.violations = append(r.violations, code)
}

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// movableClock is a Clock tests can set forward.
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
