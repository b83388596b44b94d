package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/klokku/agenda/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidRole = errors.New("role must be boss, pa or empty")

type Service interface {
	Get(ctx context.Context, deviceId string) (Settings, error)
	Update(ctx context.Context, s Settings) (Settings, error)
	GetFlash(ctx context.Context) (FlashMessage, error)
	SetFlash(ctx context.Context, text string) (FlashMessage, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

// Get returns the stored settings of the device, or the defaults for an unknown device.
func (s *ServiceImpl) Get(ctx context.Context, deviceId string) (Settings, error) {
	stored, err := s.repo.Find(ctx, deviceId)
	if errors.Is(err, ErrNotFound) {
		log.Debugf("no settings stored for device %s, using defaults", deviceId)
		return Defaults(deviceId), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return stored, nil
}

func (s *ServiceImpl) Update(ctx context.Context, settings Settings) (Settings, error) {
	switch settings.Role {
	case RoleNone, RoleBoss, RolePA:
	default:
		return Settings{}, ErrInvalidRole
	}
	settings.SelectedCalendars = uniqueCalendars(settings.SelectedCalendars)
	if err := s.repo.Store(ctx, settings); err != nil {
		return Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	log.Debugf("Updated settings of device %s (role %q)", settings.DeviceId, settings.Role)
	return settings, nil
}

func (s *ServiceImpl) GetFlash(ctx context.Context) (FlashMessage, error) {
	return s.repo.FindFlash(ctx)
}

// SetFlash replaces the shared flash message. An empty text clears it.
func (s *ServiceImpl) SetFlash(ctx context.Context, text string) (FlashMessage, error) {
	m := FlashMessage{Text: strings.TrimSpace(text), UpdatedAt: s.clock.Now()}
	if err := s.repo.StoreFlash(ctx, m); err != nil {
		return FlashMessage{}, fmt.Errorf("failed to set flash message: %w", err)
	}
	return m, nil
}

func uniqueCalendars(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
