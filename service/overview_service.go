package services

import (
	"context"
	"sync"

	"opening-hours/models/openinghours"

	"go.uber.org/zap"
)

// OverviewService keeps the weekly view of the opening hours. It follows the
// edit mode topic: leaving edit mode reloads the view.
type OverviewService struct {
	hours *OpeningHoursService
	clock Clock
	log   *zap.Logger

	mu          sync.RWMutex
	days        []openinghours.Day
	editing     bool
	unsubscribe func()
}

func NewOverviewService(ctx context.Context, hours *OpeningHoursService, topics *TopicRegistry, clock Clock, log *zap.Logger) (*OverviewService, error) {
	o := &OverviewService{hours: hours, clock: clock, log: log}
	if err := o.Refresh(ctx); err != nil {
		return nil, err
	}
	unsubscribe := topics.Subscribe(TOPIC_EDIT_MODE, o.onEditMode)
	o.mu.Lock()
	o.unsubscribe = unsubscribe
	o.mu.Unlock()
	return o, nil
}

func (o *OverviewService) onEditMode(msg interface{}) {
	active, ok := msg.(bool)
	if !ok {
		o.log.Warn("[OverviewService] Ignoring edit mode message", zap.Any("message", msg))
		return
	}
	if !active {
		if err := o.Refresh(context.Background()); err != nil {
			o.log.Error("[OverviewService] Refresh after edit mode failed", zap.Error(err))
		}
	}
	o.mu.Lock()
	o.editing = active
	o.mu.Unlock()
}

// Refresh rebuilds the day buckets from the current week.
func (o *OverviewService) Refresh(ctx context.Context) error {
	days, err := o.hours.Days(ctx)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.days = days
	o.mu.Unlock()
	return nil
}

// CurrentDay is today's ISO weekday in the display location.
func (o *OverviewService) CurrentDay() int {
	return IsoWeekday(o.clock.Now().In(o.hours.Location()))
}

func (o *OverviewService) Editing() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.editing
}

// Overview returns the current view.
func (o *OverviewService) Overview() openinghours.Overview {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return openinghours.Overview{
		Days:       o.days,
		CurrentDay: o.CurrentDay(),
		Editing:    o.editing,
	}
}

// Close stops following the edit mode topic.
func (o *OverviewService) Close() {
	o.mu.Lock()
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
