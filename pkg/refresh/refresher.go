package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/metrics"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/agenda"
	"github.com/klokku/agenda/pkg/calendar"
	"github.com/klokku/agenda/pkg/override"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const DefaultWindowDays = 30

// Refresher periodically replaces the agenda's source list with what the calendar
// sources currently report and reconciles stored overrides against it.
type Refresher struct {
	store      *agenda.Store
	sources    []calendar.Source
	overrides  override.Service
	bus        *event_bus.EventBus
	clock      utils.Clock
	metrics    *metrics.Metrics
	windowDays int
	cron       *cron.Cron

	// serializes refreshes triggered by the schedule and by requests
	mu sync.Mutex
}

func NewRefresher(
	store *agenda.Store,
	sources []calendar.Source,
	overrides override.Service,
	bus *event_bus.EventBus,
	clock utils.Clock,
	m *metrics.Metrics,
	cfg config.Refresh,
) (*Refresher, error) {
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	r := &Refresher{
		store:      store,
		sources:    sources,
		overrides:  overrides,
		bus:        bus,
		clock:      clock,
		metrics:    m,
		windowDays: windowDays,
	}

	logger := cron.PrintfLogger(log.StandardLogger())
	r.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := r.cron.AddFunc(cfg.Schedule, func() {
		if err := r.Refresh(context.Background()); err != nil {
			log.Errorf("scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Schedule, err)
	}
	return r, nil
}

// Start restores persisted overrides, runs the first refresh and starts the schedule.
// A failing first refresh is logged; the schedule retries it.
func (r *Refresher) Start(ctx context.Context) error {
	set, err := r.overrides.Load(ctx)
	if err != nil {
		return err
	}
	r.store.ReplaceOverrides(set, r.clock.Now())

	if err := r.Refresh(ctx); err != nil {
		log.Errorf("initial refresh failed: %v", err)
	}
	log.Info("Starting calendar refresh")
	r.cron.Start()
	return nil
}

func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	log.Info("Calendar refresh stopped")
}

// Window returns the fetched interval: from the start of today to windowDays later.
func (r *Refresher) Window(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, r.windowDays)
}

// Refresh fetches every source once. When no source could be read the previous list is
// kept.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	from, to := r.Window(now)
	events, err := calendar.Fetch(ctx, r.sources, from, to, now.Location())
	if err != nil {
		r.metrics.Refresh(metrics.ResultError)
		if errors.Is(err, calendar.ErrAllSourcesFailed) {
			log.Warn("no calendar source answered, keeping the previous agenda")
		}
		return err
	}

	set, dropped, err := r.store.Refresh(events, now)
	if err != nil {
		r.metrics.Refresh(metrics.ResultError)
		return err
	}
	r.metrics.Refresh(metrics.ResultApplied)

	if err := r.overrides.Reconcile(ctx, set.All(), dropped); err != nil {
		log.Errorf("failed to persist reconciled overrides: %v", err)
	}

	refreshed := event_bus.SourceRefreshed{Events: len(events), DroppedOverrides: dropped, At: now}
	if err := r.bus.Publish(event_bus.NewEvent(ctx, event_bus.SourceRefreshedType, refreshed)); err != nil {
		log.Errorf("failed to publish source refresh: %v", err)
	}
	log.Debugf("Refreshed agenda: %d events in [%s, %s), %d overrides dropped",
		len(events), from.Format(time.DateOnly), to.Format(time.DateOnly), len(dropped))
	return nil
}
