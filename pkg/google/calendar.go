package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/klokku/agenda/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

const maxResults = 250

var ErrUnauthenticated = fmt.Errorf("google calendar is not authorized, authentication is required")

// Calendar reads the events of a set of Google calendars as a single source.
type Calendar struct {
	service     func(ctx context.Context) (*gcal.Service, error)
	calendarIds []string
	timezone    string
}

func newGoogleCalendar(service func(ctx context.Context) (*gcal.Service, error), calendarIds []string, timezone string) *Calendar {
	return &Calendar{
		service:     service,
		calendarIds: calendarIds,
		timezone:    timezone,
	}
}

func (c *Calendar) Name() string {
	return "google"
}

// GetEvents lists single (expanded) events of every configured calendar. A calendar
// that is gone (404/410) counts as empty; any other failure of one calendar is logged
// and the rest are still read.
func (c *Calendar) GetEvents(ctx context.Context, from, to time.Time) ([]event.RawEvent, error) {
	service, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	var events []event.RawEvent
	var errs []error
	for _, calendarId := range c.calendarIds {
		items, err := c.listEvents(ctx, service, calendarId, from, to)
		if err != nil {
			if isGone(err) {
				log.Warnf("Google calendar %s not found, treating as empty", calendarId)
				continue
			}
			err = fmt.Errorf("unable to retrieve events from Google Calendar %s: %w", calendarId, err)
			log.Error(err)
			errs = append(errs, err)
			continue
		}
		events = append(events, googleEventsToEvents(calendarId, items)...)
	}
	if len(errs) > 0 && len(errs) == len(c.calendarIds) {
		return nil, errors.Join(errs...)
	}
	return events, nil
}

func (c *Calendar) listEvents(ctx context.Context, service *gcal.Service, calendarId string, from, to time.Time) ([]*gcal.Event, error) {
	call := service.Events.List(calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)
	if c.timezone != "" {
		call = call.TimeZone(c.timezone)
	}

	var items []*gcal.Event
	err := call.Pages(ctx, func(page *gcal.Events) error {
		items = append(items, page.Items...)
		return nil
	})
	return items, err
}

func googleEventsToEvents(calendarId string, googleEvents []*gcal.Event) []event.RawEvent {
	events := make([]event.RawEvent, 0, len(googleEvents))
	for _, item := range googleEvents {
		if item.Status == "cancelled" {
			continue
		}
		raw := event.RawEvent{
			Id:         item.Id,
			Title:      item.Summary,
			CalendarId: calendarId,
			Location:   item.Location,
			HtmlLink:   item.HtmlLink,
		}
		if item.Start != nil && item.Start.Date != "" {
			raw.AllDay = true
			raw.StartAt = item.Start.Date
			raw.EndAt = item.Start.Date
			if item.End != nil && item.End.Date != "" {
				raw.EndAt = item.End.Date
			}
		} else {
			if item.Start != nil {
				raw.StartAt = item.Start.DateTime
			}
			if item.End != nil {
				raw.EndAt = item.End.DateTime
			}
		}
		events = append(events, raw)
	}
	return events
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
}
