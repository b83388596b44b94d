package current_event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/agenda/internal/event_bus"
	"github.com/klokku/agenda/internal/metrics"
	"github.com/klokku/agenda/internal/utils"
	"github.com/klokku/agenda/pkg/agenda"
	"github.com/klokku/agenda/pkg/cascade"
	"github.com/klokku/agenda/pkg/override"
	"github.com/klokku/agenda/pkg/settings"
	"github.com/klokku/agenda/pkg/timing"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoCurrentEvent   = errors.New("no current event")
	ErrReadOnly         = errors.New("device is read-only")
	ErrOverrideNotFound = errors.New("override not found")
)

type Service interface {
	FindCurrentEvent(ctx context.Context) (CurrentEvent, error)
	ExtendCurrentEvent(ctx context.Context, minutes int) (Change, error)
	FinishCurrentEvent(ctx context.Context) (Change, error)
	Agenda(ctx context.Context) agenda.Snapshot
	RevertOverride(ctx context.Context, eventId string) error
}

type ServiceImpl struct {
	store     *agenda.Store
	overrides override.Service
	bus       *event_bus.EventBus
	clock     utils.Clock
	metrics   *metrics.Metrics
}

func NewService(store *agenda.Store, overrides override.Service, bus *event_bus.EventBus, clock utils.Clock, m *metrics.Metrics) *ServiceImpl {
	return &ServiceImpl{
		store:     store,
		overrides: overrides,
		bus:       bus,
		clock:     clock,
		metrics:   m,
	}
}

func (s *ServiceImpl) FindCurrentEvent(ctx context.Context) (CurrentEvent, error) {
	now := s.clock.Now()
	active, ok := timing.FindActive(s.store.Snapshot().Events, now)
	if !ok {
		return CurrentEvent{}, ErrNoCurrentEvent
	}
	remaining := active.EndTime.Sub(now)
	return CurrentEvent{
		Event:     active,
		Now:       now,
		Remaining: remaining,
		Critical:  timing.IsCritical(remaining),
	}, nil
}

func (s *ServiceImpl) ExtendCurrentEvent(ctx context.Context, minutes int) (Change, error) {
	return s.apply(ctx, ActionExtend, func(snapshot agenda.Snapshot, now time.Time) (cascade.Result, error) {
		return cascade.Extend(snapshot.Events, now, minutes)
	})
}

func (s *ServiceImpl) FinishCurrentEvent(ctx context.Context) (Change, error) {
	return s.apply(ctx, ActionFinish, func(snapshot agenda.Snapshot, now time.Time) (cascade.Result, error) {
		return cascade.Finish(snapshot.Events, now), nil
	})
}

func (s *ServiceImpl) apply(ctx context.Context, action string, fn func(agenda.Snapshot, time.Time) (cascade.Result, error)) (Change, error) {
	if settings.Current(ctx).ReadOnly() {
		log.Debugf("%s refused for read-only device", action)
		s.metrics.OperatorAction(action, metrics.ResultReadOnly)
		return Change{}, ErrReadOnly
	}

	now := s.clock.Now()
	result, err := s.store.Apply(now, func(snapshot agenda.Snapshot) (cascade.Result, error) {
		return fn(snapshot, now)
	})
	if err != nil {
		if errors.Is(err, cascade.ErrInvalidMinutes) {
			s.metrics.OperatorAction(action, metrics.ResultInvalid)
		} else {
			s.metrics.OperatorAction(action, metrics.ResultError)
		}
		return Change{}, fmt.Errorf("failed to %s current event: %w", action, err)
	}
	if !result.Applied {
		log.Infof("No current event to %s", action)
		s.metrics.OperatorAction(action, metrics.ResultNoActive)
		return Change{}, ErrNoCurrentEvent
	}
	s.metrics.OperatorAction(action, metrics.ResultApplied)
	if action == ActionExtend {
		s.metrics.CascadeShifted(result.Shifted())
	}

	// The in-memory store is authoritative. A failed write is repaired by the next refresh,
	// which overwrites every kept override.
	if err := s.overrides.StoreBatch(ctx, result.Overrides); err != nil {
		log.Errorf("failed to persist %s of %s: %v", action, result.ActiveId, err)
	}

	change := Change{Action: action, ActiveId: result.ActiveId}
	snapshot := s.store.Snapshot()
	eventIds := make([]string, 0, len(result.Overrides))
	for _, o := range result.Overrides {
		eventIds = append(eventIds, o.EventId)
		if e, ok := snapshot.Find(o.EventId); ok {
			change.Events = append(change.Events, e)
		}
	}
	log.Infof("Applied %s to %s, %d events changed", action, result.ActiveId, len(eventIds))

	err = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.OverridesAppliedType, event_bus.OverridesApplied{
		Action:   action,
		ActiveId: result.ActiveId,
		EventIds: eventIds,
		At:       now,
	}))
	if err != nil {
		log.Errorf("failed to publish %s: %v", action, err)
	}
	return change, nil
}

func (s *ServiceImpl) Agenda(ctx context.Context) agenda.Snapshot {
	return s.store.Snapshot()
}

// RevertOverride drops the manual timing of one event so it follows its calendar again.
func (s *ServiceImpl) RevertOverride(ctx context.Context, eventId string) error {
	if settings.Current(ctx).ReadOnly() {
		s.metrics.OperatorAction(ActionRevert, metrics.ResultReadOnly)
		return ErrReadOnly
	}
	if _, ok := s.store.Snapshot().Overrides.Get(eventId); !ok {
		return ErrOverrideNotFound
	}
	if err := s.overrides.Delete(ctx, eventId); err != nil {
		s.metrics.OperatorAction(ActionRevert, metrics.ResultError)
		return fmt.Errorf("failed to revert override of %s: %w", eventId, err)
	}
	if !s.store.RemoveOverride(eventId, s.clock.Now()) {
		return ErrOverrideNotFound
	}
	s.metrics.OperatorAction(ActionRevert, metrics.ResultApplied)
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.OverridesAppliedType, event_bus.OverridesApplied{
		Action:   ActionRevert,
		ActiveId: eventId,
		EventIds: []string{eventId},
		At:       s.clock.Now(),
	}))
	if err != nil {
		log.Errorf("failed to publish revert: %v", err)
	}
	return nil
}
