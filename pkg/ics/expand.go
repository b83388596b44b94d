package ics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/klokku/agenda/pkg/event"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const DefaultMaxOccurrences = 500

// Expand turns parsed events into the occurrences overlapping [from, to). Recurring
// events keep their duration, skip EXDATEs and honor RECURRENCE-ID replacements; their
// occurrences are identified as UID/<start unix millis>.
func Expand(calendarId string, events []Parsed, from, to time.Time, maxOccurrences int) []event.RawEvent {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}
	replaced := make(map[string]map[int64]Parsed)
	for _, e := range events {
		if e.RecurrenceId == nil {
			continue
		}
		if replaced[e.UID] == nil {
			replaced[e.UID] = make(map[int64]Parsed)
		}
		replaced[e.UID][e.RecurrenceId.UnixMilli()] = e
	}

	raws := make([]event.RawEvent, 0, len(events))
	for _, e := range events {
		switch {
		case e.RecurrenceId != nil:
			// emitted in place of the occurrence it replaces
		case e.RRule == "":
			if overlaps(e.Start, e.End, from, to) {
				raws = append(raws, toRaw(calendarId, e.UID, e, e.Start, e.End))
			}
		default:
			raws = append(raws, expandRecurring(calendarId, e, replaced[e.UID], from, to, maxOccurrences)...)
		}
	}
	return raws
}

func expandRecurring(calendarId string, e Parsed, replaced map[int64]Parsed, from, to time.Time, maxOccurrences int) []event.RawEvent {
	rule, err := rrule.StrToRRule(e.RRule)
	if err != nil {
		log.Warnf("invalid RRULE %q of %s: %v", e.RRule, e.UID, err)
		return nil
	}
	rule.DTStart(e.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range e.ExDates {
		set.ExDate(ex.In(e.Start.Location()))
	}

	duration := e.End.Sub(e.Start)
	// widen the lower bound so occurrences that started before the window and are still running are kept
	starts := set.Between(from.Add(-duration).In(e.Start.Location()), to.In(e.Start.Location()), true)
	if len(starts) > maxOccurrences {
		log.Warnf("truncating %d occurrences of %s to %d", len(starts), e.UID, maxOccurrences)
		starts = starts[:maxOccurrences]
	}

	raws := make([]event.RawEvent, 0, len(starts))
	for _, start := range starts {
		id := fmt.Sprintf("%s/%s", e.UID, strconv.FormatInt(start.UnixMilli(), 10))
		occurrence, occStart, occEnd := e, start, start.Add(duration)
		if r, ok := replaced[start.UnixMilli()]; ok {
			occurrence, occStart, occEnd = r, r.Start, r.End
		}
		if overlaps(occStart, occEnd, from, to) {
			raws = append(raws, toRaw(calendarId, id, occurrence, occStart, occEnd))
		}
	}
	return raws
}

func toRaw(calendarId, id string, e Parsed, start, end time.Time) event.RawEvent {
	raw := event.RawEvent{
		Id:         id,
		Title:      e.Summary,
		AllDay:     e.AllDay,
		CalendarId: calendarId,
		Location:   e.Location,
	}
	if e.AllDay {
		raw.StartAt = start.Format(time.DateOnly)
		raw.EndAt = end.Format(time.DateOnly)
	} else {
		raw.StartAt = start.Format(time.RFC3339)
		raw.EndAt = end.Format(time.RFC3339)
	}
	return raw
}

func overlaps(start, end, from, to time.Time) bool {
	if end.Equal(start) {
		return !start.Before(from) && start.Before(to)
	}
	return start.Before(to) && end.After(from)
}
