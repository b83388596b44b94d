package app

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/metrics"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/agenda"
	"github.com/klokku/agenda/pkg/announcement"
	"github.com/klokku/agenda/pkg/calendar"
	"github.com/klokku/agenda/pkg/calendar_provider"
	"github.com/klokku/agenda/pkg/current_event"
	"github.com/klokku/agenda/pkg/google"
	"github.com/klokku/agenda/pkg/override"
	"github.com/klokku/agenda/pkg/refresh"
	"github.com/klokku/agenda/pkg/settings"
	"github.com/klokku/agenda/pkg/timing"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	Validate *validator.Validate
	Metrics  *metrics.Metrics
	EventBus *event_bus.EventBus
	Store    *agenda.Store

	OverrideService override.Service

	SettingsService settings.Service
	SettingsHandler *settings.Handler

	LocalCalendarService *calendar.Service
	LocalCalendarHandler *calendar.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	CalendarProvider *calendar_provider.CalendarProvider
	Sources          []calendar.Source
	Refresher        *refresh.Refresher
	RefreshHandler   *refresh.Handler

	Ticker *timing.Ticker

	Announcer           *announcement.Announcer
	AnnouncementHandler *announcement.Handler

	CurrentEventService current_event.Service
	CurrentEventHandler *current_event.EventHandler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}
	deps.Clock = utils.SystemClock{Location: cfg.Location()}
	deps.Validate = validator.New()
	deps.Metrics = metrics.New()
	deps.EventBus = event_bus.NewEventBus()
	deps.Store = agenda.NewStore()

	deps.OverrideService = override.NewService(override.NewRepository(db))

	deps.SettingsService = settings.NewService(settings.NewRepository(db), deps.Clock)
	deps.SettingsHandler = settings.NewHandler(deps.SettingsService, deps.Validate)

	deps.LocalCalendarService = calendar.NewService(calendar.NewRepository(db))
	deps.LocalCalendarHandler = calendar.NewHandler(deps.LocalCalendarService, deps.Validate, func(ctx context.Context) {
		if err := deps.Refresher.Refresh(ctx); err != nil {
			log.Errorf("failed to refresh agenda after local calendar change: %v", err)
		}
	})

	deps.GoogleAuth = google.NewGoogleAuth(google.NewTokenRepository(db), cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, cfg)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.CalendarProvider = calendar_provider.NewCalendarProvider(cfg, deps.LocalCalendarService, deps.GoogleService)
	sources, err := deps.CalendarProvider.Sources()
	if err != nil {
		return nil, err
	}
	deps.Sources = sources

	deps.Refresher, err = refresh.NewRefresher(deps.Store, deps.Sources, deps.OverrideService, deps.EventBus, deps.Clock, deps.Metrics, cfg.Refresh)
	if err != nil {
		return nil, err
	}
	deps.RefreshHandler = refresh.NewHandler(deps.Refresher)

	deps.Ticker, err = timing.NewTicker(deps.Store, deps.EventBus, deps.Clock, deps.Metrics, cfg.Timing)
	if err != nil {
		return nil, err
	}

	deps.Announcer = announcement.NewAnnouncer(announcement.DefaultCapacity)
	deps.Announcer.Subscribe(deps.EventBus)
	deps.AnnouncementHandler = announcement.NewHandler(deps.Announcer)

	deps.CurrentEventService = current_event.NewService(deps.Store, deps.OverrideService, deps.EventBus, deps.Clock, deps.Metrics)
	deps.CurrentEventHandler = current_event.NewEventHandler(deps.CurrentEventService, deps.Validate)

	return deps, nil
}
