package settings

import (
	"context"
	"testing"
	"time"

	"github.com/klokku/agenda/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.February, 14, 9, 30, 0, 0, time.UTC)

func setupService(t *testing.T) (*ServiceImpl, *RepositoryStub) {
	repo := NewRepositoryStub()
	t.Cleanup(repo.Reset)
	return NewService(repo, &utils.MockClock{FixedNow: now}), repo
}

func TestServiceImpl_Get(t *testing.T) {

	t.Run("should return defaults for an unknown device", func(t *testing.T) {
		service, _ := setupService(t)

		s, err := service.Get(context.Background(), "kiosk-1")

		require.NoError(t, err)
		assert.Equal(t, Defaults("kiosk-1"), s)
		assert.True(t, s.BlinkEnabled)
		assert.Equal(t, 2, s.RefreshIntervalMinutes)
		assert.False(t, s.VoiceEnabled)
		assert.False(t, s.ReadOnly())
	})

	t.Run("should return stored settings", func(t *testing.T) {
		service, repo := setupService(t)
		stored := Defaults("kiosk-1")
		stored.Role = RoleBoss
		require.NoError(t, repo.Store(context.Background(), stored))

		s, err := service.Get(context.Background(), "kiosk-1")

		require.NoError(t, err)
		assert.True(t, s.ReadOnly())
	})
}

func TestServiceImpl_Update(t *testing.T) {

	t.Run("should drop duplicate and empty calendars", func(t *testing.T) {
		service, repo := setupService(t)
		s := Defaults("kiosk-1")
		s.SelectedCalendars = []string{"primary", "", "work", "primary"}

		updated, err := service.Update(context.Background(), s)

		require.NoError(t, err)
		assert.Equal(t, []string{"primary", "work"}, updated.SelectedCalendars)
		stored, err := repo.Find(context.Background(), "kiosk-1")
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("should reject unknown roles", func(t *testing.T) {
		service, _ := setupService(t)
		s := Defaults("kiosk-1")
		s.Role = "admin"

		_, err := service.Update(context.Background(), s)

		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestServiceImpl_SetFlash(t *testing.T) {
	service, _ := setupService(t)

	m, err := service.SetFlash(context.Background(), "  Meeting moved to room 4  ")
	require.NoError(t, err)

	assert.Equal(t, "Meeting moved to room 4", m.Text)
	assert.Equal(t, now, m.UpdatedAt)
	stored, err := service.GetFlash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, m, stored)
}

func TestSettings_ShouldPlaySound(t *testing.T) {
	s := Defaults("kiosk-1")
	assert.False(t, s.ShouldPlaySound())

	s.Role = RoleBoss
	assert.True(t, s.ShouldPlaySound())
	s.SoundEnabledBoss = false
	assert.False(t, s.ShouldPlaySound())

	s.Role = RolePA
	assert.True(t, s.ShouldPlaySound())
}
