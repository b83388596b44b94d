package timing

import (
	"fmt"
	"sync"
	"time"

	"github.com/klokku/agenda/pkg/cascade"
	"github.com/klokku/agenda/pkg/event"
)

const CriticalThreshold = 2 * time.Minute

// FindActive returns the earliest-starting event with start <= now < end. All-day,
// inverted and malformed events are never active.
func FindActive(events []event.Event, now time.Time) (event.Event, bool) {
	idx := cascade.FindActive(events, now, false)
	if idx < 0 {
		return event.Event{}, false
	}
	return events[idx], true
}

// NextUpcoming returns the first schedulable event starting after now.
func NextUpcoming(events []event.Event, now time.Time) (event.Event, bool) {
	for _, e := range events {
		if e.Schedulable() && e.StartTime.After(now) {
			return e, true
		}
	}
	return event.Event{}, false
}

// FormatRemaining renders a countdown as -HH:MM:SS, dropping sub-second precision.
// Anything not positive is shown as 00:00:00.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("-%02d:%02d:%02d", hours, minutes, seconds)
}

func IsCritical(d time.Duration) bool {
	return d <= CriticalThreshold
}

// Transition marks the tick where the active event changed. Empty ids mean "none".
type Transition struct {
	PreviousId    string
	PreviousTitle string
	CurrentId     string
	CurrentTitle  string
}

type State struct {
	Now        time.Time
	Active     *event.Event
	Remaining  string
	Critical   bool
	Transition *Transition
}

// Tracker remembers the active event between ticks to detect edges.
type Tracker struct {
	mu       sync.Mutex
	previous *event.Event
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Tick evaluates events at now. Repeated ticks with the same active event carry no
// transition.
func (t *Tracker) Tick(now time.Time, events []event.Event) State {
	state := State{Now: now}
	active, ok := FindActive(events, now)
	if ok {
		remaining := active.EndTime.Sub(now)
		state.Active = &active
		state.Remaining = FormatRemaining(remaining)
		state.Critical = IsCritical(remaining)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	previousId := ""
	if t.previous != nil {
		previousId = t.previous.Id
	}
	currentId := ""
	if state.Active != nil {
		currentId = state.Active.Id
	}
	if previousId != currentId {
		transition := &Transition{PreviousId: previousId, CurrentId: currentId}
		if t.previous != nil {
			transition.PreviousTitle = t.previous.Title
		}
		if state.Active != nil {
			transition.CurrentTitle = state.Active.Title
		}
		state.Transition = transition
	}
	t.previous = state.Active
	return state
}
