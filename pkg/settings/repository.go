package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("device settings not found")

type Repository interface {
	Find(ctx context.Context, deviceId string) (Settings, error)
	Store(ctx context.Context, s Settings) error
	FindFlash(ctx context.Context) (FlashMessage, error)
	StoreFlash(ctx context.Context, m FlashMessage) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Find(ctx context.Context, deviceId string) (Settings, error) {
	query := `SELECT device_id, role, blink_enabled, refresh_interval_minutes, selected_calendars,
				sound_enabled_boss, sound_enabled_pa, voice_enabled, voice_uri
				FROM device_settings WHERE device_id = $1`
	var s Settings
	var role string
	err := r.db.QueryRow(ctx, query, deviceId).Scan(
		&s.DeviceId,
		&role,
		&s.BlinkEnabled,
		&s.RefreshIntervalMinutes,
		&s.SelectedCalendars,
		&s.SoundEnabledBoss,
		&s.SoundEnabledPA,
		&s.VoiceEnabled,
		&s.VoiceURI,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	} else if err != nil {
		err := fmt.Errorf("failed to find settings of device %s: %w", deviceId, err)
		log.Error(err)
		return Settings{}, err
	}
	s.Role = Role(role)
	if s.SelectedCalendars == nil {
		s.SelectedCalendars = []string{}
	}
	return s, nil
}

func (r *RepositoryImpl) Store(ctx context.Context, s Settings) error {
	query := `INSERT INTO device_settings (device_id, role, blink_enabled, refresh_interval_minutes, selected_calendars,
				sound_enabled_boss, sound_enabled_pa, voice_enabled, voice_uri)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (device_id) DO UPDATE SET
					role = EXCLUDED.role,
					blink_enabled = EXCLUDED.blink_enabled,
					refresh_interval_minutes = EXCLUDED.refresh_interval_minutes,
					selected_calendars = EXCLUDED.selected_calendars,
					sound_enabled_boss = EXCLUDED.sound_enabled_boss,
					sound_enabled_pa = EXCLUDED.sound_enabled_pa,
					voice_enabled = EXCLUDED.voice_enabled,
					voice_uri = EXCLUDED.voice_uri`
	calendars := s.SelectedCalendars
	if calendars == nil {
		calendars = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		s.DeviceId,
		string(s.Role),
		s.BlinkEnabled,
		s.RefreshIntervalMinutes,
		calendars,
		s.SoundEnabledBoss,
		s.SoundEnabledPA,
		s.VoiceEnabled,
		s.VoiceURI,
	)
	if err != nil {
		err := fmt.Errorf("could not store settings of device %s: %w", s.DeviceId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) FindFlash(ctx context.Context) (FlashMessage, error) {
	var m FlashMessage
	err := r.db.QueryRow(ctx, "SELECT message, updated_at FROM flash_message WHERE id = 1").Scan(&m.Text, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return FlashMessage{}, nil
	} else if err != nil {
		err := fmt.Errorf("failed to read flash message: %w", err)
		log.Error(err)
		return FlashMessage{}, err
	}
	return m, nil
}

func (r *RepositoryImpl) StoreFlash(ctx context.Context, m FlashMessage) error {
	query := `INSERT INTO flash_message (id, message, updated_at) VALUES (1, $1, $2)
				ON CONFLICT (id) DO UPDATE SET message = EXCLUDED.message, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.Exec(ctx, query, m.Text, m.UpdatedAt); err != nil {
		err := fmt.Errorf("could not store flash message: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
