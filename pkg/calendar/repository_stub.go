package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RepositoryStub struct {
	mu     sync.Mutex
	events map[uuid.UUID]LocalEvent
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{events: map[uuid.UUID]LocalEvent{}}
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, event LocalEvent) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.UID = uuid.New()
	r.events[event.UID] = event
	return event.UID, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, from, to time.Time) ([]LocalEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]LocalEvent, 0, len(r.events))
	for _, e := range r.events {
		if e.StartTime.Before(to) && e.EndTime.After(from) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, event LocalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.UID]; !ok {
		return ErrEventNotFound
	}
	r.events[event.UID] = event
	return nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, uid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[uid]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, uid)
	return nil
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = map[uuid.UUID]LocalEvent{}
}
