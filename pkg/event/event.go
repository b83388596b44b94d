package event

import (
	"sort"
	"time"
)

type Status string

const (
	StatusUnknown  Status = ""
	StatusUpcoming Status = "UPCOMING"
	StatusOngoing  Status = "ONGOING"
	StatusExpired  Status = "EXPIRED"
)

const NoTitle = "(No Title)"

type Event struct {
	Id         string
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	AllDay     bool
	CalendarId string
	Location   string
	HtmlLink   string
	Status     Status
	// Malformed is set when the source start or end could not be parsed. Such events
	// are never classified, never active and never shifted.
	Malformed bool
	// RawStartAt and RawEndAt keep the source values of a malformed event.
	RawStartAt string
	RawEndAt   string
}

// Inverted reports whether the event ends before it starts.
func (e Event) Inverted() bool {
	return !e.Malformed && e.EndTime.Before(e.StartTime)
}

// Duration of the event, clamped to zero for malformed and inverted events.
func (e Event) Duration() time.Duration {
	if e.Malformed || e.Inverted() {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// Schedulable reports whether the event takes part in active-event lookup and cascades.
func (e Event) Schedulable() bool {
	return !e.Malformed && !e.AllDay && !e.Inverted()
}

// Classify maps an interval and the current instant to a status. now == start is Ongoing,
// now == end is Expired.
func Classify(now, start, end time.Time) Status {
	if !now.Before(end) {
		return StatusExpired
	}
	if !now.Before(start) {
		return StatusOngoing
	}
	return StatusUpcoming
}

// ClassifyAll returns a copy of events with Status recomputed for now.
func ClassifyAll(now time.Time, events []Event) []Event {
	classified := make([]Event, len(events))
	for i, e := range events {
		if e.Malformed {
			e.Status = StatusUnknown
		} else {
			e.Status = Classify(now, e.StartTime, e.EndTime)
		}
		classified[i] = e
	}
	return classified
}

// SortByStart orders events in place by start time. Malformed events go last,
// equal starts are ordered by id so the result does not depend on input order.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Malformed != b.Malformed {
			return !a.Malformed
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.Id < b.Id
	})
}

// Dedupe collapses events sharing an id, keeping the last occurrence in place of the first.
func Dedupe(events []Event) []Event {
	positions := make(map[string]int, len(events))
	result := make([]Event, 0, len(events))
	for _, e := range events {
		if pos, ok := positions[e.Id]; ok {
			result[pos] = e
			continue
		}
		positions[e.Id] = len(result)
		result = append(result, e)
	}
	return result
}
