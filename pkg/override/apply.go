package override

import (
	"time"

	"github.com/klokku/agenda/pkg/event"
)

// Apply returns the effective events: source events with override fields substituted,
// sorted by start. The source slice is not modified.
func Apply(source []event.Event, overrides Set) []event.Event {
	effective := make([]event.Event, 0, len(source))
	for _, e := range source {
		if o, ok := overrides.Get(e.Id); ok && !e.Malformed {
			if o.StartTime != nil {
				e.StartTime = *o.StartTime
			}
			if o.EndTime != nil {
				e.EndTime = *o.EndTime
			}
		}
		effective = append(effective, e)
	}
	event.SortByStart(effective)
	return effective
}

// Reconcile decides which overrides survive a fresh fetch of source events.
//
// An end override is kept while it still extends the source event, or when it ended the
// event early and that moment has already passed. A start override is kept while it still
// pushes the event later than the source start. Everything else is moot and dropped, as
// are overrides for events that disappeared from the source.
func Reconcile(fresh []event.Event, overrides Set, now time.Time) (Set, []string) {
	byId := make(map[string]event.Event, len(fresh))
	for _, e := range fresh {
		byId[e.Id] = e
	}

	kept := make([]Override, 0, overrides.Len())
	var dropped []string
	for _, o := range overrides.All() {
		source, ok := byId[o.EventId]
		if !ok || source.Malformed {
			dropped = append(dropped, o.EventId)
			continue
		}
		reconciled := o
		if o.EndTime != nil {
			extends := o.EndTime.After(source.EndTime)
			endedEarly := o.EndTime.Before(source.EndTime) && !o.EndTime.After(now)
			if !extends && !endedEarly {
				reconciled.EndTime = nil
			}
		}
		if o.StartTime != nil && !o.StartTime.After(source.StartTime) {
			reconciled.StartTime = nil
		}
		if reconciled.IsEmpty() {
			dropped = append(dropped, o.EventId)
			continue
		}
		kept = append(kept, reconciled)
	}
	return Set{}.With(kept...), dropped
}
