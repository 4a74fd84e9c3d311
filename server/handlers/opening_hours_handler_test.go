package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"opening-hours/api/calendar"
	"opening-hours/dao/redis"
	"opening-hours/db"
	"opening-hours/models"
	"opening-hours/models/openinghours"
	services "opening-hours/service"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type immediateScheduler struct{}

func (immediateScheduler) ForPeriod(job func(), interval time.Duration, immediate bool) func() {
	if immediate {
		job()
	}
	return func() {}
}

type harness struct {
	handler  *OpeningHoursHandler
	calendar *calendar.CalendarApiClientMock
	overview *services.OverviewService
}

func event(id, start, end string) *openinghours.OpeningHoursEvent {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return &openinghours.OpeningHoursEvent{ID: id, Namespace: "namespace", Type: openinghours.TYPE_OPENING_HOURS, Start: s, End: e}
}

// newHarness wires the handler on in-memory backends holding two slots on
// Monday and one on Wednesday. Now is Wednesday 2016-05-18 12:00 Brussels.
func newHarness(t *testing.T, permissions ...string) *harness {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()
	loc, err := time.LoadLocation("Europe/Brussels")
	require.NoError(t, err)
	clock := services.ClockFunc(func() time.Time { return time.Date(2016, 5, 18, 10, 0, 0, 0, time.UTC) })

	cal := calendar.NewCalendarApiClientMock("namespace")
	cal.Seed(
		event("0", "2016-05-16T08:00:00Z", "2016-05-16T10:00:00Z"),
		event("1", "2016-05-16T11:00:00Z", "2016-05-16T16:00:00Z"),
		event("4", "2016-05-18T08:00:00Z", "2016-05-18T10:00:00Z"),
	)
	client := db.NewMockRedisClient(ctx)
	topics := services.NewTopicRegistry(log)
	broadcaster := redis.NewRedisEditModeBroadcaster(client, log)
	stop, err := broadcaster.Listen(ctx, func(active bool) { topics.Publish(services.TOPIC_EDIT_MODE, active) })
	require.NoError(t, err)
	t.Cleanup(stop)

	hours := services.NewOpeningHoursService(cal, redis.NewRedisApplicationDataDAO(client), clock, loc, log)
	overview, err := services.NewOverviewService(ctx, hours, topics, clock, log)
	require.NoError(t, err)
	t.Cleanup(overview.Close)
	sign := services.NewOpenClosedSign(hours, immediateScheduler{}, clock, time.Minute, log)
	sign.Start(ctx)
	visibility := services.NewVisibilityService(ctx, redis.NewRedisConfigDAO(client), log)

	handler := NewOpeningHoursHandler(hours, overview, sign, visibility, broadcaster,
		services.NewStaticPermissions(permissions...), clock, log)
	return &harness{handler: handler, calendar: cal, overview: overview}
}

func do(h http.HandlerFunc, method, path, body string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestGetOverview(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.GetOverview, "GET", "/v1/opening-hours", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var view openinghours.Overview
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Equal(t, 3, view.CurrentDay)
	assert.False(t, view.Editing)
	assert.Equal(t, services.VISIBILITY_HIDDEN, view.Visibility)
	require.Len(t, view.Days, 7)
	assert.Len(t, view.Days[0].Slots, 2)
	assert.Len(t, view.Days[2].Slots, 1)
}

func TestGetEvents(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.GetEvents, "GET", "/v1/opening-hours/events", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var events []openinghours.OpeningHoursEvent
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&events))
	assert.Len(t, events, 3)
}

func TestGetEvents_UTCWireForm(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.GetEvents, "GET", "/v1/opening-hours/events", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var raw []map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	require.Len(t, raw, 3)
	for _, e := range raw {
		assert.True(t, strings.HasSuffix(e["start"].(string), "Z"), e["start"])
		assert.True(t, strings.HasSuffix(e["end"].(string), "Z"), e["end"])
	}
	assert.Equal(t, "2016-05-16T08:00:00Z", raw[0]["start"])
}

func TestGetStatus(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.GetStatus, "GET", "/v1/opening-hours/status", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var status openinghours.Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.False(t, status.Open)
	require.NotNil(t, status.NextOpening)
	assert.True(t, status.NextOpening.Equal(time.Date(2016, 5, 23, 8, 0, 0, 0, time.UTC)))
}

func TestCreateSlot(t *testing.T) {
	h := newHarness(t, services.PERMISSION_CALENDAR_EVENT_ADD)

	rr := do(h.handler.CreateSlot, "POST", "/v1/opening-hours/days/6/slots", `{"start":"08:00","end":"12:00"}`, map[string]string{DAY_PATH_ARG: "6"})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created openinghours.OpeningHoursEvent
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Start.Equal(time.Date(2016, 5, 21, 6, 0, 0, 0, time.UTC)))
	assert.True(t, created.End.Equal(time.Date(2016, 5, 21, 10, 0, 0, 0, time.UTC)))
	assert.Len(t, h.calendar.Events(), 4)

	rr = do(h.handler.GetEvents, "GET", "/v1/opening-hours/events", "", nil)
	var events []openinghours.OpeningHoursEvent
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&events))
	assert.Len(t, events, 4)
}

func TestCreateSlot_Rejected(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		day         string
		body        string
		code        int
		violations  []string
	}{
		{"end before start", []string{services.PERMISSION_CALENDAR_EVENT_ADD}, "6", `{"start":"12:00","end":"08:00"}`, http.StatusUnprocessableEntity, []string{"end.lowerbound"}},
		{"missing fields", []string{services.PERMISSION_CALENDAR_EVENT_ADD}, "6", `{}`, http.StatusUnprocessableEntity, []string{"start.invalid", "end.invalid"}},
		{"day out of range", []string{services.PERMISSION_CALENDAR_EVENT_ADD}, "8", `{"start":"08:00","end":"12:00"}`, http.StatusBadRequest, nil},
		{"malformed body", []string{services.PERMISSION_CALENDAR_EVENT_ADD}, "6", `{`, http.StatusBadRequest, nil},
		{"no permission", nil, "6", `{"start":"08:00","end":"12:00"}`, http.StatusForbidden, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.permissions...)

			rr := do(h.handler.CreateSlot, "POST", "/v1/opening-hours/days/"+tt.day+"/slots", tt.body, map[string]string{DAY_PATH_ARG: tt.day})

			assert.Equal(t, tt.code, rr.Code)
			if tt.violations != nil {
				var resp models.ViolationsResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.violations, resp.Violations)
			}
			assert.Len(t, h.calendar.Events(), 3)
		})
	}
}

func TestUpdateSlot(t *testing.T) {
	h := newHarness(t, services.PERMISSION_CALENDAR_EVENT_ADD)

	rr := do(h.handler.UpdateSlot, "PUT", "/v1/opening-hours/slots/1", `{"start":"14:00"}`, map[string]string{ID_PATH_ARG: "1"})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated openinghours.OpeningHoursEvent
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "1", updated.ID)
	assert.True(t, updated.Start.Equal(time.Date(2016, 5, 16, 12, 0, 0, 0, time.UTC)))
	assert.True(t, updated.End.Equal(time.Date(2016, 5, 16, 16, 0, 0, 0, time.UTC)))

	for _, e := range h.calendar.Events() {
		if e.ID == "1" {
			assert.True(t, e.Start.Equal(updated.Start))
		}
	}
}

func TestUpdateSlot_Unknown(t *testing.T) {
	h := newHarness(t, services.PERMISSION_CALENDAR_EVENT_ADD)

	rr := do(h.handler.UpdateSlot, "PUT", "/v1/opening-hours/slots/nope", `{"start":"14:00"}`, map[string]string{ID_PATH_ARG: "nope"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteSlot(t *testing.T) {
	h := newHarness(t, services.PERMISSION_CALENDAR_EVENT_ADD)

	rr := do(h.handler.DeleteSlot, "DELETE", "/v1/opening-hours/slots/0", "", map[string]string{ID_PATH_ARG: "0"})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, h.calendar.Events(), 2)
	rr = do(h.handler.GetEvents, "GET", "/v1/opening-hours/events", "", nil)
	var events []openinghours.OpeningHoursEvent
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&events))
	assert.Len(t, events, 2)
}

func TestDeleteSlot_GatewayFailure(t *testing.T) {
	h := newHarness(t, services.PERMISSION_CALENDAR_EVENT_ADD)
	h.calendar.WriteErr = errors.New("backend down")

	rr := do(h.handler.DeleteSlot, "DELETE", "/v1/opening-hours/slots/0", "", map[string]string{ID_PATH_ARG: "0"})

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestToggleVisibility(t *testing.T) {
	h := newHarness(t, services.PERMISSION_CALENDAR_EVENT_ADD)

	rr := do(h.handler.ToggleVisibility, "POST", "/v1/opening-hours/visibility/toggle", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h.handler.GetVisibility, "GET", "/v1/opening-hours/visibility", "", nil)
	var resp VisibilityResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, services.VISIBILITY_VISIBLE, resp.Status)
	assert.False(t, resp.Working)

	denied := newHarness(t)
	rr = do(denied.handler.ToggleVisibility, "POST", "/v1/opening-hours/visibility/toggle", "", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSetEditMode(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.SetEditMode, "PUT", "/v1/edit-mode", `{"active":true}`, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Eventually(t, h.overview.Editing, time.Second, 5*time.Millisecond)

	rr = do(h.handler.SetEditMode, "PUT", "/v1/edit-mode", `{"active":false}`, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Eventually(t, func() bool { return !h.overview.Editing() }, time.Second, 5*time.Millisecond)

	rr = do(h.handler.SetEditMode, "PUT", "/v1/edit-mode", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetICS(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.GetICS, "GET", "/v1/opening-hours.ics", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/calendar")
	assert.Equal(t, 3, strings.Count(rr.Body.String(), "RRULE:FREQ=WEEKLY"))
}

func TestGetChart(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.GetChart, "GET", "/v1/opening-hours/chart", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<title>Opening Hours</title>")
}

func TestPing(t *testing.T) {
	h := newHarness(t)

	rr := do(h.handler.Ping, "GET", "/ping", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
