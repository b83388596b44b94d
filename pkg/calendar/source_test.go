package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/klokku/agenda/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location, _ = time.LoadLocation("Asia/Dhaka")

var (
	windowFrom = time.Date(2026, time.February, 14, 0, 0, 0, 0, location)
	windowTo   = windowFrom.AddDate(0, 0, 30)
)

func TestFetch(t *testing.T) {

	t.Run("should merge and sort events of all sources", func(t *testing.T) {
		work := NewStubSource("work",
			event.RawEvent{Id: "w1", Title: "Board review", StartAt: "2026-02-14T11:00:00+06:00", EndAt: "2026-02-14T11:15:00+06:00"},
		)
		personal := NewStubSource("personal",
			event.RawEvent{Id: "p1", Title: "Dentist", StartAt: "2026-02-14T09:00:00", EndAt: "2026-02-14T09:30:00"},
		)

		events, err := Fetch(context.Background(), []Source{work, personal}, windowFrom, windowTo, location)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "p1", events[0].Id)
		assert.Equal(t, time.Date(2026, time.February, 14, 9, 0, 0, 0, location).Unix(), events[0].StartTime.Unix())
		assert.Equal(t, "w1", events[1].Id)
	})

	t.Run("should skip a failing source", func(t *testing.T) {
		broken := NewStubSource("broken")
		broken.Err = errors.New("timeout")
		work := NewStubSource("work",
			event.RawEvent{Id: "w1", Title: "Board review", StartAt: "2026-02-14T11:00:00+06:00", EndAt: "2026-02-14T11:15:00+06:00"},
		)

		events, err := Fetch(context.Background(), []Source{broken, work}, windowFrom, windowTo, location)

		require.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, 1, broken.Calls)
	})

	t.Run("should fail when every source failed", func(t *testing.T) {
		broken := NewStubSource("broken")
		broken.Err = errors.New("timeout")

		_, err := Fetch(context.Background(), []Source{broken}, windowFrom, windowTo, location)

		assert.ErrorIs(t, err, ErrAllSourcesFailed)
	})

	t.Run("should keep malformed events last", func(t *testing.T) {
		source := NewStubSource("work",
			event.RawEvent{Id: "bad", Title: "Broken", StartAt: "tomorrow", EndAt: "later"},
			event.RawEvent{Id: "ok", Title: "Fine", StartAt: "2026-02-14T11:00:00+06:00", EndAt: "2026-02-14T11:15:00+06:00"},
		)

		events, err := Fetch(context.Background(), []Source{source}, windowFrom, windowTo, location)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "ok", events[0].Id)
		assert.True(t, events[1].Malformed)
	})

	t.Run("should return an empty list without sources", func(t *testing.T) {
		events, err := Fetch(context.Background(), nil, windowFrom, windowTo, location)

		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}
