package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"opening-hours/api"
	"opening-hours/models"
	"opening-hours/models/openinghours"
)

const EVENTS_ENDPOINT = "/calendar/events"
const NAMESPACE_HEADER = "X-Namespace"
const WIRE_TIME_FORMAT = "2006-01-02T15:04:05.000Z"

// CalendarApiClient embeds the common HTTPClient
type CalendarApiClient struct {
	*api.HTTPClient
	namespace string
}

// NewCalendarApiClient creates a new instance of CalendarApiClient. namespace is
// sent with every request and assigned to new events that carry none.
func NewCalendarApiClient(httpClient *api.HTTPClient, namespace string) *CalendarApiClient {
	return &CalendarApiClient{
		HTTPClient: httpClient,
		namespace:  namespace,
	}
}

func (c *CalendarApiClient) headers() map[string]string {
	return map[string]string{NAMESPACE_HEADER: c.namespace}
}

// FindAllBetweenStartDateAndEndDate queries the events of a type within [StartDate, EndDate).
func (c *CalendarApiClient) FindAllBetweenStartDateAndEndDate(ctx context.Context, req models.FindEventsRequest) ([]*openinghours.OpeningHoursEvent, error) {
	query := url.Values{}
	query.Set("type", req.Type)
	query.Set("startDate", req.StartDate.UTC().Format(WIRE_TIME_FORMAT))
	query.Set("endDate", req.EndDate.UTC().Format(WIRE_TIME_FORMAT))

	var response []*openinghours.OpeningHoursEvent
	if err := c.Request(ctx, http.MethodGet, EVENTS_ENDPOINT+"?"+query.Encode(), c.headers(), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to find calendar events: %w", err)
	}
	return response, nil
}

// Create posts a new event. The backend may answer without a body, in which
// case nil is returned.
func (c *CalendarApiClient) Create(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx EditContext) (*openinghours.OpeningHoursEvent, error) {
	payload := c.toPayload(event)
	var response *openinghours.OpeningHoursEvent
	if err := c.Request(ctx, http.MethodPost, EVENTS_ENDPOINT, c.headers(), payload, &response); err != nil {
		return nil, c.writeError("create", err, editCtx)
	}
	return response, nil
}

// Update replaces an existing event. The backend may answer without a body.
func (c *CalendarApiClient) Update(ctx context.Context, event *openinghours.OpeningHoursEvent, editCtx EditContext) (*openinghours.OpeningHoursEvent, error) {
	payload := c.toPayload(event)
	var response *openinghours.OpeningHoursEvent
	endpoint := EVENTS_ENDPOINT + "/" + url.PathEscape(event.ID)
	if err := c.Request(ctx, http.MethodPut, endpoint, c.headers(), payload, &response); err != nil {
		return nil, c.writeError("update", err, editCtx)
	}
	return response, nil
}

// Delete removes an event by id.
func (c *CalendarApiClient) Delete(ctx context.Context, event *openinghours.OpeningHoursEvent) error {
	endpoint := EVENTS_ENDPOINT + "/" + url.PathEscape(event.ID)
	if err := c.Request(ctx, http.MethodDelete, endpoint, c.headers(), nil, nil); err != nil {
		return c.writeError("delete", err, nil)
	}
	return nil
}

type eventPayload struct {
	ID         string `json:"id,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	Type       string `json:"type"`
	Recurrence string `json:"recurrence,omitempty"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func (c *CalendarApiClient) toPayload(event *openinghours.OpeningHoursEvent) eventPayload {
	namespace := event.Namespace
	if namespace == "" {
		namespace = c.namespace
	}
	return eventPayload{
		ID:         event.ID,
		Namespace:  namespace,
		Type:       event.Type,
		Recurrence: event.Recurrence,
		Start:      event.Start.UTC().Format(WIRE_TIME_FORMAT),
		End:        event.End.UTC().Format(WIRE_TIME_FORMAT),
	}
}

// writeError maps backend status codes to the package sentinels and forwards
// reported violations to editCtx.
func (c *CalendarApiClient) writeError(op string, err error, editCtx EditContext) error {
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("failed to %s calendar event: %w", op, err)
	}

	switch statusErr.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("failed to %s calendar event: %w", op, ErrNotFound)
	case http.StatusBadRequest, http.StatusPreconditionFailed, http.StatusUnprocessableEntity:
		var violations models.ViolationsResponse
		if jsonErr := json.Unmarshal(statusErr.Body, &violations); jsonErr == nil && editCtx != nil {
			for _, v := range violations.Violations {
				editCtx.AddViolation(v)
			}
		}
		return fmt.Errorf("failed to %s calendar event: %w", op, ErrRejected)
	}
	return fmt.Errorf("failed to %s calendar event: %w", op, err)
}

var _ CalendarAPI = (*CalendarApiClient)(nil)
