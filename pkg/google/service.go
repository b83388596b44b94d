package google

import (
	"context"
	"fmt"
	"slices"

	"github.com/klokku/agenda/internal/config"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type CalendarItem struct {
	ID              string
	Summary         string
	Primary         bool
	BackgroundColor string
	// Synced is set for calendars the agenda reads.
	Synced bool
}

type Service interface {
	GetCalendar(calendarIds []string) *Calendar
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
}

type ServiceImpl struct {
	auth        *GoogleAuth
	timezone    string
	calendarIds []string
	options     []option.ClientOption
}

func NewService(auth *GoogleAuth, cfg config.Application, options ...option.ClientOption) *ServiceImpl {
	return &ServiceImpl{
		auth:        auth,
		timezone:    cfg.Timezone,
		calendarIds: cfg.Google.Calendars,
		options:     options,
	}
}

// GetCalendar returns a source reading the given calendars with the stored credentials.
func (s *ServiceImpl) GetCalendar(calendarIds []string) *Calendar {
	return newGoogleCalendar(s.prepareGoogleService, calendarIds, s.timezone)
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().MinAccessRole("reader").Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	googleCalendars := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		summary := cal.SummaryOverride
		if summary == "" {
			summary = cal.Summary
		}
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:              cal.Id,
			Summary:         summary,
			Primary:         cal.Primary,
			BackgroundColor: cal.BackgroundColor,
			Synced:          slices.Contains(s.calendarIds, cal.Id) || (cal.Primary && slices.Contains(s.calendarIds, "primary")),
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context) (*calendar.Service, error) {
	client, err := s.auth.getClient(ctx)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %w", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("google calendar is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}
	options := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)
	service, err := calendar.NewService(ctx, options...)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}
