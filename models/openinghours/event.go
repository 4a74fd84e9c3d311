package openinghours

import (
	"fmt"
	"time"
)

// TYPE_OPENING_HOURS classifies calendar events that describe opening hours.
const TYPE_OPENING_HOURS = "opening hours"

// RECURRENCE_WEEKLY is the only recurrence opening hours support.
const RECURRENCE_WEEKLY = "weekly"

// OpeningHoursEvent is a weekly-recurring window during which the location is open.
// Start and End are anchored to a day within the week the event was loaded for.
type OpeningHoursEvent struct {
	ID         string    `json:"id,omitempty"`
	Namespace  string    `json:"namespace,omitempty"`
	Type       string    `json:"type"`
	Recurrence string    `json:"recurrence,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// IsPersisted reports whether the backend has assigned an id to the event.
func (e *OpeningHoursEvent) IsPersisted() bool {
	return e.ID != ""
}

func (e *OpeningHoursEvent) ToString() string {
	return fmt.Sprintf("OpeningHoursEvent(id=%s, start=%s, end=%s)",
		e.ID, e.Start.UTC().Format(time.RFC3339), e.End.UTC().Format(time.RFC3339))
}
