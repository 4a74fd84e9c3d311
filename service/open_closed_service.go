package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"opening-hours/metrics"
	"opening-hours/models/openinghours"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// IsOpenAt reports whether now falls strictly inside one of the events.
func IsOpenAt(events []*openinghours.OpeningHoursEvent, now time.Time) bool {
	for _, e := range events {
		if e.Start.Before(now) && e.End.After(now) {
			return true
		}
	}
	return false
}

// NextOpeningAfter returns the first weekly recurrence of any event start that
// is strictly after now, computed in loc so that wall clock times survive DST
// changes. ok is false when there are no events.
func NextOpeningAfter(events []*openinghours.OpeningHoursEvent, now time.Time, loc *time.Location) (next time.Time, ok bool, err error) {
	for _, e := range events {
		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:    rrule.WEEKLY,
			Dtstart: e.Start.In(loc),
		})
		if err != nil {
			return time.Time{}, false, fmt.Errorf("failed to build weekly rule for %s: %w", e.ToString(), err)
		}
		candidate := rule.After(now.In(loc), false)
		if candidate.IsZero() {
			continue
		}
		if !ok || candidate.Before(next) {
			next, ok = candidate, true
		}
	}
	return next, ok, nil
}

// OpenClosedSign periodically evaluates whether the location is open.
type OpenClosedSign struct {
	hours     *OpeningHoursService
	scheduler Scheduler
	clock     Clock
	interval  time.Duration
	log       *zap.Logger

	mu          sync.RWMutex
	open        bool
	evaluatedAt time.Time
	stop        func()
}

func NewOpenClosedSign(
	hours *OpeningHoursService,
	scheduler Scheduler,
	clock Clock,
	interval time.Duration,
	log *zap.Logger,
) *OpenClosedSign {
	return &OpenClosedSign{
		hours:     hours,
		scheduler: scheduler,
		clock:     clock,
		interval:  interval,
		log:       log,
	}
}

// Start evaluates right away and then every interval until Stop.
func (s *OpenClosedSign) Start(ctx context.Context) {
	stop := s.scheduler.ForPeriod(func() { s.Evaluate(ctx) }, s.interval, true)
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
}

func (s *OpenClosedSign) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Evaluate recomputes the open flag. When the events cannot be loaded the
// previous flag is kept.
func (s *OpenClosedSign) Evaluate(ctx context.Context) {
	now := s.clock.Now()
	open, err := s.hours.OpenAt(ctx, now)
	if err != nil {
		s.log.Warn("[OpenClosedSign] Could not load opening hours, keeping previous state", zap.Error(err))
		return
	}

	s.mu.Lock()
	changed := s.open != open
	s.open = open
	s.evaluatedAt = now
	s.mu.Unlock()

	metrics.SetOpen(open)
	if changed {
		s.log.Info("[OpenClosedSign] Open state changed", zap.Bool("open", open))
	}
}

// IsOpen returns the result of the last evaluation.
func (s *OpenClosedSign) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Status returns the last evaluation together with the next opening.
func (s *OpenClosedSign) Status(ctx context.Context) (openinghours.Status, error) {
	s.mu.RLock()
	status := openinghours.Status{Open: s.open, EvaluatedAt: s.evaluatedAt}
	s.mu.RUnlock()

	next, ok, err := s.hours.NextOpening(ctx, s.clock.Now())
	if err != nil {
		return status, err
	}
	if ok {
		status.NextOpening = &next
	}
	return status, nil
}
