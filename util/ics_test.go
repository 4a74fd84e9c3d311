package util

import (
	"strings"
	"testing"
	"time"

	"opening-hours/models/openinghours"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportOpeningHoursICS(t *testing.T) {
	persisted := slot(1, 8, 10)
	persisted.ID = "id0"
	events := []*openinghours.OpeningHoursEvent{persisted, slot(2, 11, 16)}
	generatedAt := time.Date(2016, 5, 16, 0, 0, 0, 0, time.UTC)

	out := ExportOpeningHoursICS(events, generatedAt)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	vevents := cal.Events()
	require.Len(t, vevents, 2)

	assert.Equal(t, "id0", vevents[0].Id())
	assert.Equal(t, "opening-hours-1", vevents[1].Id())
	for _, ve := range vevents {
		rrule := ve.GetProperty(ical.ComponentPropertyRrule)
		require.NotNil(t, rrule)
		assert.Equal(t, "FREQ=WEEKLY", rrule.Value)
		assert.Equal(t, ICS_SUMMARY, ve.GetProperty(ical.ComponentPropertySummary).Value)
	}

	start, err := vevents[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(persisted.Start))
}

func TestExportOpeningHoursICS_Empty(t *testing.T) {
	out := ExportOpeningHoursICS(nil, time.Now())

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
