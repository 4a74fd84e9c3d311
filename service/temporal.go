package services

import (
	"fmt"
	"time"
)

// INSTANT_FORMAT is the UTC ISO 8601 form, with milliseconds, events are exchanged in.
const INSTANT_FORMAT = "2006-01-02T15:04:05.000Z"

// WALL_CLOCK_FORMAT is the HH:mm form slots are displayed and edited in.
const WALL_CLOCK_FORMAT = "15:04"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// IsoWeekday returns 1 for Monday through 7 for Sunday, in t's location.
func IsoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// StartOfIsoWeek returns Monday 00:00 of t's ISO week, in t's location.
func StartOfIsoWeek(t time.Time) time.Time {
	monday := t.AddDate(0, 0, 1-IsoWeekday(t))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// ComposeInstant moves reference to ISO weekday of its own week and sets the
// time of day to wallClock's, read in wallClock's location. The result is in
// reference's location, so the offset in effect on the target date applies.
func ComposeInstant(reference, wallClock time.Time, weekday int) time.Time {
	day := StartOfIsoWeek(reference).AddDate(0, 0, weekday-1)
	return time.Date(day.Year(), day.Month(), day.Day(),
		wallClock.Hour(), wallClock.Minute(), wallClock.Second(), wallClock.Nanosecond(),
		reference.Location())
}

// ComposeEnd is ComposeInstant for the end of a slot: midnight means the end
// of the day, so it moves to 00:00 of the next day.
func ComposeEnd(reference, wallClock time.Time, weekday int) time.Time {
	t := ComposeInstant(reference, wallClock, weekday)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.AddDate(0, 0, 1)
	}
	return t
}

// FormatInstant renders t as UTC ISO 8601 with milliseconds.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(INSTANT_FORMAT)
}

// FormatTime renders t as HH:mm in loc.
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(WALL_CLOCK_FORMAT)
}

// ParseWallClock parses an HH:mm string as a wall clock time in loc.
func ParseWallClock(text string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(WALL_CLOCK_FORMAT, text, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid wall clock %q: %w", text, err)
	}
	return t, nil
}
