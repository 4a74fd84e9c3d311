package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"opening-hours/metrics"
	"opening-hours/models/openinghours"
)

const (
	VIOLATION_START_INVALID   = "start.invalid"
	VIOLATION_END_INVALID     = "end.invalid"
	VIOLATION_END_LOWER_BOUND = "end.lowerbound"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrSessionClosed    = errors.New("edit session is closed")
	ErrSessionBusy      = errors.New("edit session is submitting")
)

// TimeSlot is one slot of a day: either an existing event or an empty place
// where one can be added.
type TimeSlot struct {
	Day   int
	hours *OpeningHoursService
	clock Clock

	mu    sync.Mutex
	event *openinghours.OpeningHoursEvent
}

func NewTimeSlot(day int, event *openinghours.OpeningHoursEvent, hours *OpeningHoursService, clock Clock) *TimeSlot {
	return &TimeSlot{Day: day, event: event, hours: hours, clock: clock}
}

// Event returns the tracked event, nil for an empty slot.
func (s *TimeSlot) Event() *openinghours.OpeningHoursEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event
}

func (s *TimeSlot) setEvent(event *openinghours.OpeningHoursEvent) {
	s.mu.Lock()
	s.event = event
	s.mu.Unlock()
}

// String renders "HH:mm - HH:mm" in the display location, or "-" for an empty slot.
func (s *TimeSlot) String() string {
	event := s.Event()
	if event == nil {
		return "-"
	}
	loc := s.hours.Location()
	start, end := s.hours.EventTimes(event)
	return FormatTime(start, loc) + " - " + FormatTime(end, loc)
}

// Edit opens an edit session on the slot. Without the calendar.event.add
// permission the session can only be closed.
func (s *TimeSlot) Edit(perm PermissionChecker) *EditSession {
	session := &EditSession{slot: s, state: SessionPermissionDenied}
	if !perm.HasPermission(PERMISSION_CALENDAR_EVENT_ADD) {
		return session
	}

	session.permitted = true
	session.state = SessionOpen
	session.tracked = s.Event()
	if session.tracked != nil {
		loc := s.hours.Location()
		start, end := s.hours.EventTimes(session.tracked)
		session.start, session.startValid = start.In(loc), true
		session.end, session.endValid = end.In(loc), true
	}
	return session
}

type SessionState int

const (
	SessionClosed SessionState = iota
	SessionOpen
	SessionValidating
	SessionSubmitting
	SessionPermissionDenied
)

func (s SessionState) String() string {
	switch s {
	case SessionClosed:
		return "closed"
	case SessionOpen:
		return "open"
	case SessionValidating:
		return "validating"
	case SessionSubmitting:
		return "submitting"
	case SessionPermissionDenied:
		return "permission-denied"
	}
	return "unknown"
}

// EditSession edits the start and end of one slot. It is the edit context of
// the writes it performs, collecting the violations the calendar reports.
type EditSession struct {
	slot      *TimeSlot
	permitted bool

	mu             sync.Mutex
	state          SessionState
	tracked        *openinghours.OpeningHoursEvent
	start, end     time.Time
	startValid     bool
	endValid       bool
	formattedStart time.Time
	formattedEnd   time.Time
	violations     []string
}

func (e *EditSession) State() SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CanDelete reports whether the session edits an existing event.
func (e *EditSession) CanDelete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.permitted && e.tracked != nil
}

// Violations returns the violations of the last submission.
func (e *EditSession) Violations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.violations...)
}

// Form returns the wall clock fields as currently filled in.
func (e *EditSession) Form() (start, end time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.start, e.end
}

// Formatted returns the instants composed by the last submission.
func (e *EditSession) Formatted() (start, end time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.formattedStart, e.formattedEnd
}

func (e *EditSession) SetStart(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.start, e.startValid = t, true
}

func (e *EditSession) SetEnd(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.end, e.endValid = t, true
}

// SetStartText fills the start field from HH:mm. Unparsable input marks the field invalid.
func (e *EditSession) SetStartText(text string) {
	t, err := ParseWallClock(text, e.slot.hours.Location())
	e.mu.Lock()
	defer e.mu.Unlock()
	e.start, e.startValid = t, err == nil
}

// SetEndText fills the end field from HH:mm. Unparsable input marks the field invalid.
func (e *EditSession) SetEndText(text string) {
	t, err := ParseWallClock(text, e.slot.hours.Location())
	e.mu.Lock()
	defer e.mu.Unlock()
	e.end, e.endValid = t, err == nil
}

// AddViolation records a violation reported by the calendar.
func (e *EditSession) AddViolation(code string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.violations = append(e.violations, code)
}

// Submit validates the form and writes the slot. Local violations are
// returned without contacting the calendar and leave the session open. On
// success the slot tracks the written event and the session closes.
func (e *EditSession) Submit(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	if err := e.checkUsable(); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	e.state = SessionValidating
	e.violations = nil
	reference := e.slot.clock.Now().In(e.slot.hours.Location())
	day := e.slot.Day
	if e.startValid {
		e.formattedStart = ComposeInstant(reference, e.start, day)
	}
	if e.endValid {
		e.formattedEnd = ComposeEnd(reference, e.end, day)
	}

	if !e.startValid {
		e.violations = append(e.violations, VIOLATION_START_INVALID)
	}
	if e.startValid && e.endValid && !e.formattedEnd.After(e.formattedStart) {
		e.violations = append(e.violations, VIOLATION_END_LOWER_BOUND)
	} else if !e.endValid {
		e.violations = append(e.violations, VIOLATION_END_INVALID)
	}
	if len(e.violations) > 0 {
		e.state = SessionOpen
		violations := append([]string(nil), e.violations...)
		e.mu.Unlock()
		metrics.IncSubmission("invalid")
		return violations, nil
	}

	e.state = SessionSubmitting
	start, end := e.formattedStart, e.formattedEnd
	payload := &openinghours.OpeningHoursEvent{
		Type:       openinghours.TYPE_OPENING_HOURS,
		Recurrence: openinghours.RECURRENCE_WEEKLY,
		Start:      start.UTC(),
		End:        end.UTC(),
	}
	tracked := e.tracked
	if tracked != nil {
		payload.ID = tracked.ID
		payload.Namespace = tracked.Namespace
	}
	e.mu.Unlock()

	result, err := e.slot.hours.Update(ctx, payload, e)

	if err == nil {
		if result != nil {
			e.slot.setEvent(result)
		} else if tracked != nil {
			e.slot.hours.SetEventTimes(tracked, payload.Start, payload.End)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	violations := append([]string(nil), e.violations...)
	if err != nil {
		if e.state == SessionSubmitting {
			e.state = SessionOpen
		}
		metrics.IncSubmission("failed")
		return violations, err
	}
	if result != nil {
		e.tracked = result
	}
	if e.state == SessionSubmitting {
		e.state = SessionClosed
	}
	metrics.IncSubmission("written")
	return nil, nil
}

// Delete removes the tracked event and closes the session.
func (e *EditSession) Delete(ctx context.Context) error {
	e.mu.Lock()
	if err := e.checkUsable(); err != nil {
		e.mu.Unlock()
		return err
	}
	tracked := e.tracked
	if tracked == nil {
		e.mu.Unlock()
		return ErrEventNotFound
	}
	e.state = SessionSubmitting
	e.mu.Unlock()

	err := e.slot.hours.Delete(ctx, tracked)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		if e.state == SessionSubmitting {
			e.state = SessionOpen
		}
		return err
	}
	e.slot.setEvent(nil)
	e.tracked = nil
	if e.state == SessionSubmitting {
		e.state = SessionClosed
	}
	return nil
}

// Close ends the session. A write still in flight completes but no longer
// changes the session state.
func (e *EditSession) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = SessionClosed
}

// checkUsable must be called with e.mu held.
func (e *EditSession) checkUsable() error {
	switch {
	case !e.permitted:
		return ErrPermissionDenied
	case e.state == SessionClosed:
		return ErrSessionClosed
	case e.state == SessionSubmitting || e.state == SessionValidating:
		return ErrSessionBusy
	}
	return nil
}
