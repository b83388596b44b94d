package caldav

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Source reads events of CalDAV calendars. Without configured calendar paths every
// calendar of the current user principal is read.
type Source struct {
	client    *caldav.Client
	calendars []string
	location  *time.Location
}

func NewSource(cfg config.CalDAV, loc *time.Location) (*Source, error) {
	baseURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid CalDAV server URL: %w", err)
	}

	var httpClient webdav.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	if cfg.Username != "" && cfg.Password != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(httpClient, cfg.Username, cfg.Password)
	}

	client, err := caldav.NewClient(httpClient, baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}
	return &Source{client: client, calendars: cfg.Calendars, location: loc}, nil
}

func (s *Source) Name() string {
	return "caldav"
}

func (s *Source) GetEvents(ctx context.Context, from, to time.Time) ([]event.RawEvent, error) {
	paths, err := s.calendarPaths(ctx)
	if err != nil {
		return nil, err
	}

	var events []event.RawEvent
	var errs []error
	for _, path := range paths {
		objects, err := s.client.QueryCalendar(ctx, path, eventsBetween(from, to))
		if err != nil {
			err = fmt.Errorf("failed to query CalDAV calendar %s: %w", path, err)
			log.Error(err)
			errs = append(errs, err)
			continue
		}
		events = append(events, objectsToEvents(path, objects, from, to, s.location)...)
	}
	if len(errs) > 0 && len(errs) == len(paths) {
		return nil, errors.Join(errs...)
	}
	return events, nil
}

func (s *Source) calendarPaths(ctx context.Context) ([]string, error) {
	if len(s.calendars) > 0 {
		return s.calendars, nil
	}
	principal, err := s.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find CalDAV principal: %w", err)
	}
	homeSet, err := s.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find CalDAV calendar home set: %w", err)
	}
	calendars, err := s.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to find CalDAV calendars: %w", err)
	}
	paths := make([]string, 0, len(calendars))
	for _, cal := range calendars {
		paths = append(paths, cal.Path)
	}
	log.Debugf("Discovered %d CalDAV calendars", len(paths))
	return paths, nil
}

func eventsBetween(from, to time.Time) *caldav.CalendarQuery {
	return &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: from,
				End:   to,
			}},
		},
	}
}

// objectsToEvents flattens calendar objects into raw events overlapping [from, to).
// Recurring events are expanded and their occurrences identified as UID/<start unix millis>.
func objectsToEvents(calendarPath string, objects []caldav.CalendarObject, from, to time.Time, loc *time.Location) []event.RawEvent {
	var events []event.RawEvent
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		replaced := make(map[string]map[int64]*ical.Component)
		var masters []*ical.Component
		for _, comp := range obj.Data.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			if comp.Props.Get(ical.PropRecurrenceID) == nil {
				masters = append(masters, comp)
				continue
			}
			rid, err := comp.Props.DateTime(ical.PropRecurrenceID, loc)
			if err != nil {
				log.Warnf("invalid RECURRENCE-ID in %s: %v", obj.Path, err)
				continue
			}
			uid, _ := comp.Props.Text(ical.PropUID)
			if replaced[uid] == nil {
				replaced[uid] = make(map[int64]*ical.Component)
			}
			replaced[uid][rid.UnixMilli()] = comp
		}
		for _, comp := range masters {
			raws, err := componentToEvents(calendarPath, comp, replaced, from, to, loc)
			if err != nil {
				log.Warnf("skipping CalDAV event in %s: %v", obj.Path, err)
				continue
			}
			events = append(events, raws...)
		}
	}
	return events
}

func componentToEvents(calendarPath string, comp *ical.Component, replaced map[string]map[int64]*ical.Component, from, to time.Time, loc *time.Location) ([]event.RawEvent, error) {
	if status, _ := comp.Props.Text(ical.PropStatus); status == "CANCELLED" {
		return nil, nil
	}
	uid, err := comp.Props.Text(ical.PropUID)
	if err != nil || uid == "" {
		return nil, errors.New("missing UID")
	}
	e := ical.Event{Component: comp}
	start, err := e.DateTimeStart(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid DTSTART of %s: %w", uid, err)
	}
	end, err := e.DateTimeEnd(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid DTEND of %s: %w", uid, err)
	}

	set, err := comp.RecurrenceSet(loc)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence of %s: %w", uid, err)
	}
	if set == nil {
		if !overlaps(start, end, from, to) {
			return nil, nil
		}
		return []event.RawEvent{toRaw(calendarPath, uid, comp, start, end)}, nil
	}

	duration := end.Sub(start)
	var raws []event.RawEvent
	for _, occStart := range set.Between(from.Add(-duration), to, true) {
		id := uid + "/" + strconv.FormatInt(occStart.UnixMilli(), 10)
		source, occEnd := comp, occStart.Add(duration)
		if r, ok := replaced[uid][occStart.UnixMilli()]; ok {
			re := ical.Event{Component: r}
			if occStart, err = re.DateTimeStart(loc); err != nil {
				continue
			}
			if occEnd, err = re.DateTimeEnd(loc); err != nil {
				continue
			}
			source = r
		}
		if overlaps(occStart, occEnd, from, to) {
			raws = append(raws, toRaw(calendarPath, id, source, occStart, occEnd))
		}
	}
	return raws, nil
}

func toRaw(calendarPath, id string, comp *ical.Component, start, end time.Time) event.RawEvent {
	title, _ := comp.Props.Text(ical.PropSummary)
	location, _ := comp.Props.Text(ical.PropLocation)
	raw := event.RawEvent{
		Id:         id,
		Title:      title,
		CalendarId: calendarPath,
		Location:   location,
	}
	if p := comp.Props.Get(ical.PropDateTimeStart); p != nil && p.ValueType() == ical.ValueDate {
		raw.AllDay = true
		raw.StartAt = start.Format(time.DateOnly)
		raw.EndAt = end.Format(time.DateOnly)
		return raw
	}
	raw.StartAt = start.Format(time.RFC3339)
	raw.EndAt = end.Format(time.RFC3339)
	return raw
}

func overlaps(start, end, from, to time.Time) bool {
	if end.Equal(start) {
		return !start.Before(from) && start.Before(to)
	}
	return start.Before(to) && end.After(from)
}
