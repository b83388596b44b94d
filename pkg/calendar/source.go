package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/klokku/agenda/pkg/event"
	log "github.com/sirupsen/logrus"
)

var ErrAllSourcesFailed = errors.New("all calendar sources failed")

// Source is a calendar the agenda reads events from.
type Source interface {
	Name() string
	GetEvents(ctx context.Context, from, to time.Time) ([]event.RawEvent, error)
}

// Fetch collects events of all sources in [from, to). A failing source is logged and
// skipped; ErrAllSourcesFailed is returned only when none of them answered.
func Fetch(ctx context.Context, sources []Source, from, to time.Time, loc *time.Location) ([]event.Event, error) {
	events := make([]event.Event, 0, 64)
	failed := 0
	for _, source := range sources {
		raws, err := source.GetEvents(ctx, from, to)
		if err != nil {
			failed++
			log.Errorf("failed to fetch events from %s: %v", source.Name(), err)
			continue
		}
		log.Debugf("Fetched %d events from %s", len(raws), source.Name())
		events = append(events, event.FromRawList(raws, loc)...)
	}
	if len(sources) > 0 && failed == len(sources) {
		return nil, ErrAllSourcesFailed
	}
	event.SortByStart(events)
	return events, nil
}
