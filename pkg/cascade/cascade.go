package cascade

import (
	"errors"
	"time"

	"github.com/klokku/agenda/pkg/event"
	"github.com/klokku/agenda/pkg/override"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidMinutes = errors.New("minutes must be positive")

const (
	// FinishEpsilon is subtracted from now when finishing an event so it is already
	// expired on the same tick.
	FinishEpsilon = time.Second
	// GraceWindow lets an operator extend an event that ended a moment ago.
	GraceWindow = 5 * time.Minute
)

// Result of an operator action. Applied is false when there was no active event and
// nothing was changed.
type Result struct {
	Applied   bool
	ActiveId  string
	Overrides []override.Override
}

// Shifted is the number of successors moved by the action.
func (r Result) Shifted() int {
	if len(r.Overrides) == 0 {
		return 0
	}
	return len(r.Overrides) - 1
}

// FindActive returns the index of the first event in a start-sorted list that is
// ongoing at now, or -1. With grace set, an event whose end lies less than GraceWindow
// in the past qualifies as well.
func FindActive(events []event.Event, now time.Time, grace bool) int {
	nowMs := now.UnixMilli()
	for i, e := range events {
		if !e.Schedulable() {
			continue
		}
		if e.StartTime.UnixMilli() <= nowMs && nowMs < e.EndTime.UnixMilli() {
			return i
		}
		sinceEnd := nowMs - e.EndTime.UnixMilli()
		if grace && sinceEnd >= 0 && sinceEnd < GraceWindow.Milliseconds() {
			return i
		}
	}
	return -1
}

// Extend pushes the end of the active event by minutes and shifts every directly
// following event that would now overlap, keeping its duration. The walk stops at the
// first event starting at or after the moving boundary.
func Extend(events []event.Event, now time.Time, minutes int) (Result, error) {
	if minutes <= 0 {
		return Result{}, ErrInvalidMinutes
	}
	idx := FindActive(events, now, true)
	if idx < 0 {
		log.Debugf("extend: no active event at %s", now.Format(time.RFC3339))
		return Result{}, nil
	}

	active := events[idx]
	boundary := active.EndTime.UnixMilli() + int64(minutes)*time.Minute.Milliseconds()
	loc := active.EndTime.Location()
	overrides := []override.Override{
		override.EndAt(active.Id, time.UnixMilli(boundary).In(loc)),
	}

	for _, next := range events[idx+1:] {
		if !next.Schedulable() {
			continue
		}
		start := next.StartTime.UnixMilli()
		if start >= boundary {
			break
		}
		duration := next.EndTime.UnixMilli() - start
		newStart := boundary
		boundary = newStart + duration
		overrides = append(overrides, override.Move(
			next.Id,
			time.UnixMilli(newStart).In(loc),
			time.UnixMilli(boundary).In(loc),
		))
	}

	log.Debugf("extend %s by %d min: %d overrides", active.Id, minutes, len(overrides))
	return Result{
		Applied:   true,
		ActiveId:  active.Id,
		Overrides: override.NewBatch(now, overrides...),
	}, nil
}

// Finish ends the ongoing event one second before now. Later events are left alone.
func Finish(events []event.Event, now time.Time) Result {
	idx := FindActive(events, now, false)
	if idx < 0 {
		log.Debugf("finish: no active event at %s", now.Format(time.RFC3339))
		return Result{}
	}
	active := events[idx]
	end := time.UnixMilli(now.UnixMilli() - FinishEpsilon.Milliseconds()).In(active.EndTime.Location())
	return Result{
		Applied:   true,
		ActiveId:  active.Id,
		Overrides: override.NewBatch(now, override.EndAt(active.Id, end)),
	}
}
