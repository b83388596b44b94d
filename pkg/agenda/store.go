package agenda

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klokku/agenda/pkg/cascade"
	"github.com/klokku/agenda/pkg/event"
	"github.com/klokku/agenda/pkg/override"
	log "github.com/sirupsen/logrus"
)

var ErrNilEvents = errors.New("source events must not be nil")

// Snapshot is an immutable view of the agenda. Events holds the effective events,
// sorted by start and classified at ClassifiedAt. Callers must not modify the slices.
type Snapshot struct {
	Source       []event.Event
	Events       []event.Event
	Overrides    override.Set
	ClassifiedAt time.Time
}

// Find returns the effective event with the given id.
func (s Snapshot) Find(eventId string) (event.Event, bool) {
	for _, e := range s.Events {
		if e.Id == eventId {
			return e, true
		}
	}
	return event.Event{}, false
}

// Store keeps the source events and the override set. Writes are serialized, reads go
// through an atomically published snapshot and never block.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{Source: []event.Event{}, Events: []event.Event{}})
	return s
}

func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// ReplaceSource installs a freshly fetched source list. Duplicate ids are collapsed with
// the last occurrence winning.
func (s *Store) ReplaceSource(events []event.Event, now time.Time) error {
	if events == nil {
		return ErrNilEvents
	}
	source := event.Dedupe(events)
	event.SortByStart(source)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(source, s.current.Load().Overrides, now)
	log.Debugf("agenda source replaced with %d events", len(source))
	return nil
}

// Refresh installs a freshly fetched source list and reconciles the override set against
// it in one step, so no operator action can slip in between. It returns the surviving
// overrides and the ids of the dropped ones.
func (s *Store) Refresh(events []event.Event, now time.Time) (override.Set, []string, error) {
	if events == nil {
		return override.Set{}, nil, ErrNilEvents
	}
	source := event.Dedupe(events)
	event.SortByStart(source)

	s.mu.Lock()
	defer s.mu.Unlock()
	set, dropped := override.Reconcile(source, s.current.Load().Overrides, now)
	s.publish(source, set, now)
	log.Debugf("agenda refreshed with %d events, %d overrides dropped", len(source), len(dropped))
	return set, dropped, nil
}

func (s *Store) ReplaceOverrides(set override.Set, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(s.current.Load().Source, set, now)
}

// RemoveOverride reverts the given event to its source timing. It reports whether an
// override existed.
func (s *Store) RemoveOverride(eventId string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.current.Load()
	if _, ok := current.Overrides.Get(eventId); !ok {
		return false
	}
	s.publish(current.Source, current.Overrides.Without(eventId), now)
	return true
}

// Reclassify recomputes statuses for now. Timestamps are left untouched.
func (s *Store) Reclassify(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.current.Load()
	next := &Snapshot{
		Source:       current.Source,
		Events:       event.ClassifyAll(now, current.Events),
		Overrides:    current.Overrides,
		ClassifiedAt: now,
	}
	s.current.Store(next)
	return *next
}

// Apply runs an operator action against the latest snapshot while holding the write lock
// and commits its overrides as one batch. Concurrent actions are applied one after another,
// each seeing the result of the previous one.
func (s *Store) Apply(now time.Time, action func(Snapshot) (cascade.Result, error)) (cascade.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.current.Load()
	result, err := action(*current)
	if err != nil {
		return cascade.Result{}, err
	}
	if !result.Applied || len(result.Overrides) == 0 {
		return result, nil
	}
	s.publish(current.Source, current.Overrides.With(result.Overrides...), now)
	return result, nil
}

// publish must be called with mu held.
func (s *Store) publish(source []event.Event, set override.Set, now time.Time) {
	effective := override.Apply(source, set)
	s.current.Store(&Snapshot{
		Source:       source,
		Events:       event.ClassifyAll(now, effective),
		Overrides:    set,
		ClassifiedAt: now,
	})
}
