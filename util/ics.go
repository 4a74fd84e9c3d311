package util

import (
	"fmt"
	"time"

	"opening-hours/models/openinghours"

	ical "github.com/arran4/golang-ical"
)

const ICS_PRODUCT_ID = "-//opening-hours//weekly schedule//EN"
const ICS_SUMMARY = "Open"

// ExportOpeningHoursICS renders the events as a calendar of weekly recurring
// VEVENTs. generatedAt is used as the DTSTAMP of every event.
func ExportOpeningHoursICS(events []*openinghours.OpeningHoursEvent, generatedAt time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ICS_PRODUCT_ID)

	for i, e := range events {
		uid := e.ID
		if uid == "" {
			uid = fmt.Sprintf("opening-hours-%d", i)
		}
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(generatedAt)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(ICS_SUMMARY)
		ve.AddRrule("FREQ=WEEKLY")
	}

	return cal.Serialize()
}
