package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klokku/agenda/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestGoogleEventsToEvents(t *testing.T) {
	items := []*gcal.Event{
		{
			Id:       "timed",
			Summary:  "Board review",
			Location: "Room 4",
			HtmlLink: "https://calendar.google.com/event?eid=timed",
			Start:    &gcal.EventDateTime{DateTime: "2026-02-14T11:00:00+06:00"},
			End:      &gcal.EventDateTime{DateTime: "2026-02-14T11:15:00+06:00"},
		},
		{
			Id:     "cancelled",
			Status: "cancelled",
			Start:  &gcal.EventDateTime{DateTime: "2026-02-14T12:00:00+06:00"},
			End:    &gcal.EventDateTime{DateTime: "2026-02-14T12:15:00+06:00"},
		},
		{
			Id:      "holiday",
			Summary: "Language day",
			Start:   &gcal.EventDateTime{Date: "2026-02-21"},
			End:     &gcal.EventDateTime{Date: "2026-02-22"},
		},
		{
			Id:    "untitled",
			Start: &gcal.EventDateTime{DateTime: "2026-02-14T13:00:00+06:00"},
			End:   &gcal.EventDateTime{DateTime: "2026-02-14T13:30:00+06:00"},
		},
	}

	events := googleEventsToEvents("primary", items)

	require.Len(t, events, 3)
	assert.Equal(t, "timed", events[0].Id)
	assert.Equal(t, "2026-02-14T11:00:00+06:00", events[0].StartAt)
	assert.Equal(t, "primary", events[0].CalendarId)
	assert.Equal(t, "Room 4", events[0].Location)
	assert.False(t, events[0].AllDay)

	assert.Equal(t, "holiday", events[1].Id)
	assert.True(t, events[1].AllDay)
	assert.Equal(t, "2026-02-21", events[1].StartAt)
	assert.Equal(t, "2026-02-22", events[1].EndAt)

	assert.Equal(t, "untitled", events[2].Id)
	assert.Empty(t, events[2].Title)
}

func googleServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
			_ = json.NewEncoder(w).Encode(gcal.CalendarList{Items: []*gcal.CalendarListEntry{
				{Id: "owner@example.com", Summary: "Owner", Primary: true, BackgroundColor: "#9fc6e7"},
				{Id: "team@group.calendar.google.com", Summary: "Team", SummaryOverride: "Team meetings"},
			}})
		case strings.Contains(r.URL.Path, "/calendars/primary/events"):
			_ = json.NewEncoder(w).Encode(gcal.Events{Items: []*gcal.Event{{
				Id:      "standup",
				Summary: "Standup",
				Start:   &gcal.EventDateTime{DateTime: "2026-02-14T10:00:00+06:00"},
				End:     &gcal.EventDateTime{DateTime: "2026-02-14T10:30:00+06:00"},
			}}})
		case strings.Contains(r.URL.Path, "/calendars/deleted/events"):
			w.WriteHeader(http.StatusGone)
			_, _ = w.Write([]byte(`{"error":{"code":410,"message":"Resource has been deleted"}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"Backend Error"}}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T, server *httptest.Server) *ServiceImpl {
	cfg := config.Defaults()
	cfg.Google.RefreshToken = "refresh-token"
	cfg.Google.Calendars = []string{"primary"}
	auth := NewGoogleAuth(NewTokenRepositoryStub(), cfg)
	// the token endpoint is never hit because requests go through the plain test client
	return NewService(auth, cfg, option.WithEndpoint(server.URL+"/"), option.WithHTTPClient(server.Client()))
}

func TestCalendar_GetEvents(t *testing.T) {
	from := time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	t.Run("should read events and treat a deleted calendar as empty", func(t *testing.T) {
		service := newTestService(t, googleServer(t))

		events, err := service.GetCalendar([]string{"primary", "deleted"}).GetEvents(context.Background(), from, to)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "standup", events[0].Id)
		assert.Equal(t, "primary", events[0].CalendarId)
	})

	t.Run("should fail when no calendar could be read", func(t *testing.T) {
		service := newTestService(t, googleServer(t))

		_, err := service.GetCalendar([]string{"broken"}).GetEvents(context.Background(), from, to)

		assert.Error(t, err)
	})

	t.Run("should require authorization", func(t *testing.T) {
		auth := NewGoogleAuth(NewTokenRepositoryStub(), config.Defaults())
		service := NewService(auth, config.Defaults())

		_, err := service.GetCalendar([]string{"primary"}).GetEvents(context.Background(), from, to)

		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestServiceImpl_ListCalendars(t *testing.T) {
	service := newTestService(t, googleServer(t))

	calendars, err := service.ListCalendars(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []CalendarItem{
		{ID: "owner@example.com", Summary: "Owner", Primary: true, BackgroundColor: "#9fc6e7", Synced: true},
		{ID: "team@group.calendar.google.com", Summary: "Team meetings"},
	}, calendars)
}
