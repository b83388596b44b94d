package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyFeed = errors.New("empty ICS feed")

// Parsed is a VEVENT as found in a feed, before recurrence expansion.
type Parsed struct {
	UID      string
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
	AllDay   bool
	RRule    string
	ExDates  []time.Time
	// RecurrenceId is set on a VEVENT replacing a single occurrence of a recurring one.
	RecurrenceId *time.Time
}

// Parse reads every VEVENT of a feed. Broken events are logged and skipped. Floating
// times are read in loc.
func Parse(body []byte, loc *time.Location) ([]Parsed, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFeed
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]Parsed, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		parsed, err := parseVEvent(ve, loc)
		if err != nil {
			log.Warnf("skipping ICS event: %v", err)
			continue
		}
		events = append(events, parsed)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (Parsed, error) {
	var out Parsed
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART in " + out.UID)
	}
	out.AllDay = isDate(dtStart)

	start, err := parseTime(dtStart, loc)
	if err != nil {
		return out, err
	}
	out.Start = start
	switch dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); {
	case dtEnd != nil:
		end, err := parseTime(dtEnd, loc)
		if err != nil {
			return out, err
		}
		out.End = end
	case out.AllDay:
		out.End = start.AddDate(0, 0, 1)
	default:
		out.End = start
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseValue(strings.TrimSpace(part), tzid(p, loc)); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); p != nil {
		if t, err := parseTime(p, loc); err == nil {
			out.RecurrenceId = &t
		}
	}
	return out, nil
}

func isDate(p *ical.IANAProperty) bool {
	if values, ok := p.ICalParameters["VALUE"]; ok && len(values) > 0 {
		if strings.EqualFold(values[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

func tzid(p *ical.IANAProperty, loc *time.Location) *time.Location {
	if values, ok := p.ICalParameters["TZID"]; ok && len(values) > 0 {
		if tz, err := time.LoadLocation(values[0]); err == nil {
			return tz
		}
		log.Warnf("unknown TZID %q, using %s", values[0], loc)
	}
	return loc
}

func parseTime(p *ical.IANAProperty, loc *time.Location) (time.Time, error) {
	return parseValue(p.Value, tzid(p, loc))
}

func parseValue(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
