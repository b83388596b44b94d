package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.February, 14, hour, minute, 0, 0, location)
}

func setupService(t *testing.T) *Service {
	repo := NewRepositoryStub()
	t.Cleanup(repo.Cleanup)
	return NewService(repo)
}

func TestService_AddEvent(t *testing.T) {

	t.Run("should store an event with a new uid", func(t *testing.T) {
		service := setupService(t)

		added, err := service.AddEvent(context.Background(), LocalEvent{Title: " Walk-in visitor ", StartTime: at(12, 0), EndTime: at(12, 20)})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, added.UID)
		assert.Equal(t, "Walk-in visitor", added.Title)
	})

	t.Run("should reject an event that does not end after it starts", func(t *testing.T) {
		service := setupService(t)

		_, err := service.AddEvent(context.Background(), LocalEvent{Title: "Oops", StartTime: at(12, 0), EndTime: at(12, 0)})

		assert.ErrorIs(t, err, ErrInvalidInterval)
	})
}

func TestService_ModifyAndDeleteEvent(t *testing.T) {
	service := setupService(t)
	added, err := service.AddEvent(context.Background(), LocalEvent{Title: "Visitor", StartTime: at(12, 0), EndTime: at(12, 20)})
	require.NoError(t, err)

	added.EndTime = at(12, 45)
	_, err = service.ModifyEvent(context.Background(), added)
	require.NoError(t, err)

	events, err := service.GetEvents(context.Background(), at(0, 0), at(23, 0))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, at(12, 45), events[0].EndTime)

	require.NoError(t, service.DeleteEvent(context.Background(), added.UID))
	assert.ErrorIs(t, service.DeleteEvent(context.Background(), added.UID), ErrEventNotFound)
}

func TestLocalSource_GetEvents(t *testing.T) {
	service := setupService(t)
	added, err := service.AddEvent(context.Background(), LocalEvent{Title: "Visitor", StartTime: at(12, 0), EndTime: at(12, 20), Location: "Lobby"})
	require.NoError(t, err)
	source := NewLocalSource(service)

	raws, err := source.GetEvents(context.Background(), at(0, 0), at(23, 0))

	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "local/"+added.UID.String(), raws[0].Id)
	assert.Equal(t, "2026-02-14T12:00:00+06:00", raws[0].StartAt)
	assert.Equal(t, LocalCalendarId, raws[0].CalendarId)
	assert.Equal(t, "Lobby", raws[0].Location)
	assert.Equal(t, "local", source.Name())
}
