package calendar_provider

import (
	"fmt"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/pkg/caldav"
	"github.com/klokku/agenda/pkg/calendar"
	"github.com/klokku/agenda/pkg/google"
	"github.com/klokku/agenda/pkg/ics"
	log "github.com/sirupsen/logrus"
)

// CalendarProvider decides which calendars feed the agenda.
type CalendarProvider struct {
	cfg           config.Application
	localService  *calendar.Service
	googleService google.Service
}

// NewCalendarProvider accepts nil services; the matching calendars are then left out.
func NewCalendarProvider(cfg config.Application, localService *calendar.Service, googleService google.Service) *CalendarProvider {
	return &CalendarProvider{
		cfg:           cfg,
		localService:  localService,
		googleService: googleService,
	}
}

// Sources returns the enabled calendar sources: the local calendar, Google, CalDAV and
// every ICS feed, in that order.
func (c *CalendarProvider) Sources() ([]calendar.Source, error) {
	location := c.cfg.Location()
	var sources []calendar.Source

	if c.localService != nil {
		sources = append(sources, calendar.NewLocalSource(c.localService))
	}
	if c.googleService != nil && c.cfg.Google.Enabled() {
		log.Infof("Reading Google calendars %v", c.cfg.Google.Calendars)
		sources = append(sources, c.googleService.GetCalendar(c.cfg.Google.Calendars))
	}
	if c.cfg.CalDAV.Enabled() {
		source, err := caldav.NewSource(c.cfg.CalDAV, location)
		if err != nil {
			return nil, fmt.Errorf("failed to create CalDAV calendar: %w", err)
		}
		log.Infof("Reading CalDAV calendars from %s", c.cfg.CalDAV.URL)
		sources = append(sources, source)
	}
	for _, source := range ics.NewSources(c.cfg.ICS, location) {
		log.Infof("Reading ICS feed %s", source.Name())
		sources = append(sources, source)
	}
	return sources, nil
}
