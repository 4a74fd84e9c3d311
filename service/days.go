package services

import (
	"time"

	"opening-hours/models/openinghours"
)

// ToDays projects events onto the seven ISO weekdays of loc. Each event is
// compared with the current head of its bucket only: it goes in front when the
// head starts later, otherwise at the back. Inputs already sorted by start, or
// with at most two slots per day, come out ordered.
func ToDays(events []*openinghours.OpeningHoursEvent, loc *time.Location) []openinghours.Day {
	days := make([]openinghours.Day, 7)
	for i := range days {
		days[i] = openinghours.Day{ID: i + 1, Slots: []*openinghours.OpeningHoursEvent{}}
	}

	for _, event := range events {
		day := &days[IsoWeekday(event.Start.In(loc))-1]
		if len(day.Slots) > 0 && day.Slots[0].Start.After(event.Start) {
			day.Slots = append([]*openinghours.OpeningHoursEvent{event}, day.Slots...)
		} else {
			day.Slots = append(day.Slots, event)
		}
	}
	return days
}
