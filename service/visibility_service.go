package services

import (
	"context"
	"errors"
	"sync"

	"opening-hours/metrics"

	"go.uber.org/zap"
)

const (
	VISIBILITY_SCOPE   = "public"
	VISIBILITY_KEY     = "opening.hours.status"
	VISIBILITY_VISIBLE = "visible"
	VISIBILITY_HIDDEN  = "hidden"
)

// ErrToggleInProgress is returned by Toggle while a previous toggle is being written.
var ErrToggleInProgress = errors.New("visibility toggle already in progress")

// ConfigReader reads scoped config values.
type ConfigReader interface {
	Read(ctx context.Context, scope, key string) (string, error)
}

// ConfigWriter writes scoped config values.
type ConfigWriter interface {
	Write(ctx context.Context, scope, key, value string) error
}

type ConfigStore interface {
	ConfigReader
	ConfigWriter
}

// VisibilityService holds the public visibility of the opening hours.
type VisibilityService struct {
	store ConfigStore
	log   *zap.Logger

	mu      sync.Mutex
	status  string
	working bool
}

// NewVisibilityService reads the stored visibility. A missing or unreadable
// value counts as hidden.
func NewVisibilityService(ctx context.Context, store ConfigStore, log *zap.Logger) *VisibilityService {
	v := &VisibilityService{store: store, log: log, status: VISIBILITY_HIDDEN}
	value, err := store.Read(ctx, VISIBILITY_SCOPE, VISIBILITY_KEY)
	if err != nil {
		log.Warn("[VisibilityService] Could not read visibility, defaulting to hidden", zap.Error(err))
		return v
	}
	if value != "" {
		v.status = value
	}
	return v
}

func (v *VisibilityService) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Working reports whether a toggle is being written.
func (v *VisibilityService) Working() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.working
}

// Toggle flips between visible and hidden and returns the resulting status.
// When the write fails the previous status is kept.
func (v *VisibilityService) Toggle(ctx context.Context) (string, error) {
	v.mu.Lock()
	if v.working {
		v.mu.Unlock()
		metrics.IncVisibilityToggle("dropped")
		return "", ErrToggleInProgress
	}
	v.working = true
	next := VISIBILITY_VISIBLE
	if v.status == VISIBILITY_VISIBLE {
		next = VISIBILITY_HIDDEN
	}
	v.mu.Unlock()

	err := v.store.Write(ctx, VISIBILITY_SCOPE, VISIBILITY_KEY, next)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.working = false
	if err != nil {
		metrics.IncVisibilityToggle(metrics.ResultError)
		v.log.Error("[VisibilityService] Could not write visibility", zap.String("status", next), zap.Error(err))
		return v.status, err
	}
	v.status = next
	metrics.IncVisibilityToggle(metrics.ResultSuccess)
	v.log.Info("[VisibilityService] Visibility changed", zap.String("status", next))
	return next, nil
}
