package calendar

import (
	"context"
	"time"

	"github.com/klokku/agenda/pkg/event"
)

type StubSource struct {
	SourceName string
	Events     []event.RawEvent
	Err        error
	Calls      int
}

func NewStubSource(name string, events ...event.RawEvent) *StubSource {
	return &StubSource{SourceName: name, Events: events}
}

func (s *StubSource) Name() string {
	return s.SourceName
}

func (s *StubSource) GetEvents(ctx context.Context, from, to time.Time) ([]event.RawEvent, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Events, nil
}
