package timing

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/metrics"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/agenda"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Ticker drives the countdown and the periodic reclassification of the agenda.
type Ticker struct {
	store   *agenda.Store
	bus     *event_bus.EventBus
	clock   utils.Clock
	metrics *metrics.Metrics
	tracker *Tracker
	cron    *cron.Cron
	latest  atomic.Pointer[State]
}

func NewTicker(store *agenda.Store, bus *event_bus.EventBus, clock utils.Clock, m *metrics.Metrics, cfg config.Timing) (*Ticker, error) {
	t := &Ticker{
		store:   store,
		bus:     bus,
		clock:   clock,
		metrics: m,
		tracker: NewTracker(),
	}
	t.latest.Store(&State{})

	logger := cron.PrintfLogger(log.StandardLogger())
	t.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := t.cron.AddFunc(cfg.Countdown, func() { t.Countdown() }); err != nil {
		return nil, fmt.Errorf("invalid countdown schedule %q: %w", cfg.Countdown, err)
	}
	if _, err := t.cron.AddFunc(cfg.Classify, func() { t.Classify() }); err != nil {
		return nil, fmt.Errorf("invalid classify schedule %q: %w", cfg.Classify, err)
	}
	return t, nil
}

func (t *Ticker) Start() {
	log.Info("Starting timing ticker")
	t.cron.Start()
}

// Stop halts scheduling and waits for running ticks to finish.
func (t *Ticker) Stop() {
	<-t.cron.Stop().Done()
	log.Info("Timing ticker stopped")
}

// Countdown runs one countdown tick and publishes an ActiveEventChanged on edges.
func (t *Ticker) Countdown() State {
	now := t.clock.Now()
	snapshot := t.store.Snapshot()
	state := t.tracker.Tick(now, snapshot.Events)
	t.latest.Store(&state)

	if state.Transition == nil {
		return state
	}
	t.metrics.ActiveTransition()
	changed := event_bus.ActiveEventChanged{
		PreviousId:    state.Transition.PreviousId,
		PreviousTitle: state.Transition.PreviousTitle,
		CurrentId:     state.Transition.CurrentId,
		CurrentTitle:  state.Transition.CurrentTitle,
		At:            now,
	}
	if next, ok := NextUpcoming(snapshot.Events, now); ok {
		changed.NextTitle = next.Title
	}
	log.Infof("Active event changed from %q to %q", changed.PreviousId, changed.CurrentId)
	err := t.bus.Publish(event_bus.NewEvent(context.Background(), event_bus.ActiveEventChangedType, changed))
	if err != nil {
		log.Errorf("failed to publish active event change: %v", err)
	}
	return state
}

func (t *Ticker) Classify() {
	snapshot := t.store.Reclassify(t.clock.Now())
	log.Tracef("Reclassified %d events", len(snapshot.Events))
}

// Latest returns the state computed by the most recent countdown tick.
func (t *Ticker) Latest() State {
	return *t.latest.Load()
}
