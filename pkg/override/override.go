package override

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Override is a manual patch of an event's start and/or end. A nil field keeps the
// source value.
type Override struct {
	EventId   string
	StartTime *time.Time
	EndTime   *time.Time
	// BatchId groups the overrides written by a single operator action.
	BatchId   uuid.UUID
	UpdatedAt time.Time
}

func (o Override) IsEmpty() bool {
	return o.StartTime == nil && o.EndTime == nil
}

// Merge applies newer on top of o; fields set in newer win.
func (o Override) Merge(newer Override) Override {
	merged := o
	if newer.StartTime != nil {
		merged.StartTime = newer.StartTime
	}
	if newer.EndTime != nil {
		merged.EndTime = newer.EndTime
	}
	merged.BatchId = newer.BatchId
	merged.UpdatedAt = newer.UpdatedAt
	return merged
}

// Set is an immutable map of overrides keyed by event id. Every modification returns a
// new Set and leaves the receiver untouched, so a Set can be shared between readers.
type Set struct {
	items map[string]Override
}

func NewSet(overrides ...Override) Set {
	return Set{}.With(overrides...)
}

func (s Set) Get(eventId string) (Override, bool) {
	o, ok := s.items[eventId]
	return o, ok
}

func (s Set) Len() int {
	return len(s.items)
}

// With merges the batch into a copy of the set. Empty overrides are ignored.
func (s Set) With(batch ...Override) Set {
	items := make(map[string]Override, len(s.items)+len(batch))
	for id, o := range s.items {
		items[id] = o
	}
	for _, o := range batch {
		if o.IsEmpty() {
			continue
		}
		if existing, ok := items[o.EventId]; ok {
			items[o.EventId] = existing.Merge(o)
		} else {
			items[o.EventId] = o
		}
	}
	return Set{items: items}
}

// Without returns a copy of the set with the given event ids removed.
func (s Set) Without(eventIds ...string) Set {
	items := make(map[string]Override, len(s.items))
	for id, o := range s.items {
		items[id] = o
	}
	for _, id := range eventIds {
		delete(items, id)
	}
	return Set{items: items}
}

// All returns the overrides ordered by event id.
func (s Set) All() []Override {
	all := make([]Override, 0, len(s.items))
	for _, o := range s.items {
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].EventId < all[j].EventId
	})
	return all
}

// NewBatch stamps overrides produced by one operator action with a shared batch id.
func NewBatch(now time.Time, overrides ...Override) []Override {
	batchId := uuid.New()
	batch := make([]Override, 0, len(overrides))
	for _, o := range overrides {
		o.BatchId = batchId
		o.UpdatedAt = now
		batch = append(batch, o)
	}
	return batch
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// EndAt builds an override replacing only the end of an event.
func EndAt(eventId string, end time.Time) Override {
	return Override{EventId: eventId, EndTime: timePtr(end)}
}

// Move builds an override replacing both start and end of an event.
func Move(eventId string, start, end time.Time) Override {
	return Override{EventId: eventId, StartTime: timePtr(start), EndTime: timePtr(end)}
}
