package commands

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/database"
	"github.com/klokku/agenda/pkg/agenda"
	"github.com/klokku/agenda/pkg/calendar"
	"github.com/klokku/agenda/pkg/calendar_provider"
	"github.com/klokku/agenda/pkg/google"
	"github.com/klokku/agenda/pkg/override"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const fetchTimeout = 30 * time.Second

func addToday(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print today's agenda with the current countdown.",
		Long: `Fetch every configured calendar once and print today's events.
Stored overrides are applied when the database is reachable; otherwise the
local calendar is skipped and the agenda is shown as the calendars report it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(ro.ConfigPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
			defer cancel()

			snapshot, err := loadToday(ctx, cfg, time.Now().In(cfg.Location()))
			if err != nil {
				return err
			}
			return printAgenda(color.Output, snapshot)
		},
	}
	topLevel.AddCommand(cmd)
}

func loadToday(ctx context.Context, cfg config.Application, now time.Time) (agenda.Snapshot, error) {
	var (
		local         *calendar.Service
		googleService google.Service
		overrides     = override.Set{}
	)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Warnf("database unreachable, showing calendars without overrides: %v", err)
		googleService = google.NewService(google.NewGoogleAuth(nil, cfg), cfg)
	} else {
		defer db.Close()
		local = calendar.NewService(calendar.NewRepository(db))
		googleService = google.NewService(google.NewGoogleAuth(google.NewTokenRepository(db), cfg), cfg)
		overrides, err = override.NewService(override.NewRepository(db)).Load(ctx)
		if err != nil {
			return agenda.Snapshot{}, err
		}
	}

	sources, err := calendar_provider.NewCalendarProvider(cfg, local, googleService).Sources()
	if err != nil {
		return agenda.Snapshot{}, err
	}

	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	events, err := calendar.Fetch(ctx, sources, from, from.AddDate(0, 0, 1), now.Location())
	if err != nil {
		return agenda.Snapshot{}, err
	}

	store := agenda.NewStore()
	store.ReplaceOverrides(overrides, now)
	if _, _, err := store.Refresh(events, now); err != nil {
		return agenda.Snapshot{}, err
	}
	return store.Snapshot(), nil
}
