package calendar

import (
	"context"
	"errors"

	"opening-hours/models"
	"opening-hours/models/openinghours"
)

// ErrRejected is returned when the backend refuses a write. The reasons are
// reported to the EditContext of the call.
var ErrRejected = errors.New("calendar event rejected")

// ErrNotFound is returned when an update or delete targets an unknown event.
var ErrNotFound = errors.New("calendar event not found")

// EditContext collects the violations the backend reports for a write.
type EditContext interface {
	AddViolation(code string)
}

// CalendarAPI defines the interface for interacting with the calendar backend
type CalendarAPI interface {
	FindAllBetweenStartDateAndEndDate(ctx context.Context, req models.FindEventsRequest) ([]*openinghours.OpeningHoursEvent, error)
	Create(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx EditContext) (*openinghours.OpeningHoursEvent, error)
	Update(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx EditContext) (*openinghours.OpeningHoursEvent, error)
	Delete(ctx context.Context, event *openinghours.OpeningHoursEvent) error
}
