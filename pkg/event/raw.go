package event

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// RawEvent is the shape handed over by calendar sources, with ISO-8601 instants.
type RawEvent struct {
	Id         string
	Title      string
	StartAt    string
	EndAt      string
	AllDay     bool
	CalendarId string
	Location   string
	HtmlLink   string
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 instant. Values without an offset are read in loc.
func ParseInstant(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	for _, layout := range layouts[1:] {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FromRaw converts a source event. Unparseable timestamps yield a Malformed event
// rather than an error so one broken entry cannot spoil the whole list.
func FromRaw(raw RawEvent, loc *time.Location) Event {
	title := raw.Title
	if strings.TrimSpace(title) == "" {
		title = NoTitle
	}
	e := Event{
		Id:         raw.Id,
		Title:      title,
		AllDay:     raw.AllDay,
		CalendarId: raw.CalendarId,
		Location:   raw.Location,
		HtmlLink:   raw.HtmlLink,
	}
	start, okStart := ParseInstant(raw.StartAt, loc)
	end, okEnd := ParseInstant(raw.EndAt, loc)
	if !okStart || !okEnd {
		log.Warnf("event %s has malformed timestamps (start=%q, end=%q)", raw.Id, raw.StartAt, raw.EndAt)
		e.Malformed = true
		e.RawStartAt = raw.StartAt
		e.RawEndAt = raw.EndAt
		return e
	}
	e.StartTime = start
	e.EndTime = end
	return e
}

func FromRawList(raws []RawEvent, loc *time.Location) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		events = append(events, FromRaw(raw, loc))
	}
	return events
}
