package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/agenda/pkg/event"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidInterval = errors.New("event must end after it starts")

// Service manages local events and exposes them as a Source.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddEvent(ctx context.Context, e LocalEvent) (LocalEvent, error) {
	if err := validateEvent(&e); err != nil {
		return LocalEvent{}, err
	}
	uid, err := s.repo.StoreEvent(ctx, e)
	if err != nil {
		return LocalEvent{}, fmt.Errorf("failed to store event: %w", err)
	}
	e.UID = uid
	log.Debugf("Added local event %s (%s)", e.UID, e.Title)
	return e, nil
}

func (s *Service) GetEvents(ctx context.Context, from, to time.Time) ([]LocalEvent, error) {
	return s.repo.GetEvents(ctx, from, to)
}

func (s *Service) ModifyEvent(ctx context.Context, e LocalEvent) (LocalEvent, error) {
	if err := validateEvent(&e); err != nil {
		return LocalEvent{}, err
	}
	if err := s.repo.UpdateEvent(ctx, e); err != nil {
		return LocalEvent{}, fmt.Errorf("failed to update event: %w", err)
	}
	return e, nil
}

func (s *Service) DeleteEvent(ctx context.Context, uid uuid.UUID) error {
	if err := s.repo.DeleteEvent(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func validateEvent(e *LocalEvent) error {
	e.Title = strings.TrimSpace(e.Title)
	if !e.EndTime.After(e.StartTime) {
		return ErrInvalidInterval
	}
	return nil
}

// LocalSource reads local events as a calendar Source.
type LocalSource struct {
	service *Service
}

func NewLocalSource(service *Service) *LocalSource {
	return &LocalSource{service: service}
}

func (l *LocalSource) Name() string {
	return LocalCalendarId
}

func (l *LocalSource) GetEvents(ctx context.Context, from, to time.Time) ([]event.RawEvent, error) {
	events, err := l.service.GetEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}
	raws := make([]event.RawEvent, 0, len(events))
	for _, e := range events {
		raws = append(raws, event.RawEvent{
			Id:         LocalCalendarId + "/" + e.UID.String(),
			Title:      e.Title,
			StartAt:    e.StartTime.Format(time.RFC3339),
			EndAt:      e.EndTime.Format(time.RFC3339),
			AllDay:     e.AllDay,
			CalendarId: LocalCalendarId,
			Location:   e.Location,
		})
	}
	return raws, nil
}
