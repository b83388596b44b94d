package override

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Service interface {
	Load(ctx context.Context) (Set, error)
	StoreBatch(ctx context.Context, batch []Override) error
	Reconcile(ctx context.Context, changed []Override, dropped []string) error
	Delete(ctx context.Context, eventId string) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Load(ctx context.Context) (Set, error) {
	overrides, err := s.repo.FindAll(ctx)
	if err != nil {
		return Set{}, fmt.Errorf("failed to load overrides: %w", err)
	}
	log.Debugf("Loaded %d event overrides", len(overrides))
	return NewSet(overrides...), nil
}

func (s *ServiceImpl) StoreBatch(ctx context.Context, batch []Override) error {
	if len(batch) == 0 {
		return nil
	}
	if err := s.repo.StoreBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to store override batch: %w", err)
	}
	log.Debugf("Stored override batch %s (%d overrides)", batch[0].BatchId, len(batch))
	return nil
}

func (s *ServiceImpl) Reconcile(ctx context.Context, changed []Override, dropped []string) error {
	if len(changed) == 0 && len(dropped) == 0 {
		return nil
	}
	if err := s.repo.Reconcile(ctx, changed, dropped); err != nil {
		return fmt.Errorf("failed to reconcile overrides: %w", err)
	}
	log.Debugf("Reconciled overrides: %d changed, %d dropped", len(changed), len(dropped))
	return nil
}

func (s *ServiceImpl) Delete(ctx context.Context, eventId string) error {
	if err := s.repo.Delete(ctx, eventId); err != nil {
		return fmt.Errorf("failed to delete override for event %s: %w", eventId, err)
	}
	return nil
}
