package cascade

import (
	"testing"
	"time"

	"github.com/klokku/agenda/pkg/event"
	"github.com/klokku/agenda/pkg/override"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location, _ = time.LoadLocation("Asia/Dhaka")

func at(hour, minute int) time.Time {
	return time.Date(2026, time.February, 14, hour, minute, 0, 0, location)
}

func ev(id string, start, end time.Time) event.Event {
	return event.Event{Id: id, Title: id, StartTime: start, EndTime: end}
}

func dayEvents() []event.Event {
	return []event.Event{
		ev("A", at(10, 0), at(10, 30)),
		ev("B", at(10, 25), at(10, 45)),
		ev("C", at(11, 0), at(11, 15)),
	}
}

func effective(events []event.Event, result Result) []event.Event {
	return override.Apply(events, override.NewSet(result.Overrides...))
}

func find(events []event.Event, id string) event.Event {
	for _, e := range events {
		if e.Id == id {
			return e
		}
	}
	return event.Event{}
}

func TestFindActive(t *testing.T) {
	events := dayEvents()

	t.Run("should pick the earliest ongoing event", func(t *testing.T) {
		assert.Equal(t, 0, FindActive(events, at(10, 27), false))
	})

	t.Run("should treat start as inclusive and end as exclusive", func(t *testing.T) {
		assert.Equal(t, 0, FindActive(events, at(10, 0), false))
		assert.Equal(t, 1, FindActive(events, at(10, 30), false))
		assert.Equal(t, -1, FindActive(events, at(10, 45), false))
	})

	t.Run("should accept a recently ended event only with grace", func(t *testing.T) {
		now := at(10, 49)
		assert.Equal(t, -1, FindActive(events, now, false))
		assert.Equal(t, 1, FindActive(events, now, true))
	})

	t.Run("should take the first event in start order when grace and ongoing compete", func(t *testing.T) {
		events := []event.Event{
			ev("A", at(10, 0), at(10, 30)),
			ev("B", at(10, 30), at(11, 0)),
		}
		assert.Equal(t, 0, FindActive(events, at(10, 32), true))
		assert.Equal(t, 1, FindActive(events, at(10, 32), false))
	})

	t.Run("should not use grace once the window passed", func(t *testing.T) {
		assert.Equal(t, -1, FindActive(events, at(10, 50), true))
	})

	t.Run("should ignore all-day, inverted and malformed events", func(t *testing.T) {
		events := []event.Event{
			{Id: "day", StartTime: at(0, 0), EndTime: at(23, 59), AllDay: true},
			ev("inverted", at(10, 30), at(10, 0)),
			{Id: "broken", Malformed: true},
		}
		assert.Equal(t, -1, FindActive(events, at(10, 15), true))
	})
}

func TestExtend(t *testing.T) {

	t.Run("should push overlapping successors and stop at the first gap", func(t *testing.T) {
		// given
		events := dayEvents()

		// when
		result, err := Extend(events, at(10, 12), 10)
		require.NoError(t, err)

		// then
		assert.True(t, result.Applied)
		assert.Equal(t, "A", result.ActiveId)
		assert.Len(t, result.Overrides, 2)
		assert.Equal(t, 1, result.Shifted())

		updated := effective(events, result)
		assert.Equal(t, at(10, 0), find(updated, "A").StartTime)
		assert.Equal(t, at(10, 40), find(updated, "A").EndTime)
		assert.Equal(t, at(10, 40), find(updated, "B").StartTime)
		assert.Equal(t, at(11, 0), find(updated, "B").EndTime)
		assert.Equal(t, at(11, 0), find(updated, "C").StartTime)
		assert.Equal(t, at(11, 15), find(updated, "C").EndTime)
	})

	t.Run("should keep durations of pushed events", func(t *testing.T) {
		// given
		events := []event.Event{
			ev("A", at(9, 0), at(10, 0)),
			ev("B", at(10, 0), at(10, 17)),
			ev("C", at(10, 17), at(10, 59)),
			ev("D", at(13, 0), at(14, 0)),
		}

		// when
		result, err := Extend(events, at(9, 30), 15)
		require.NoError(t, err)

		// then
		updated := effective(events, result)
		for _, original := range events[1:] {
			assert.Equal(t, original.Duration(), find(updated, original.Id).Duration(), original.Id)
		}
		assert.Equal(t, at(10, 15), find(updated, "B").StartTime)
		assert.Equal(t, at(10, 32), find(updated, "C").StartTime)
		assert.Equal(t, at(13, 0), find(updated, "D").StartTime)
	})

	t.Run("should stop when the next event starts exactly at the new end", func(t *testing.T) {
		events := []event.Event{
			ev("A", at(10, 0), at(10, 30)),
			ev("B", at(10, 40), at(11, 0)),
		}

		result, err := Extend(events, at(10, 10), 10)
		require.NoError(t, err)

		assert.Len(t, result.Overrides, 1)
		assert.Equal(t, "A", result.Overrides[0].EventId)
	})

	t.Run("should skip inverted, malformed and all-day events during the walk", func(t *testing.T) {
		events := []event.Event{
			ev("A", at(10, 0), at(10, 30)),
			ev("inverted", at(10, 31), at(10, 20)),
			{Id: "day", StartTime: at(10, 32), EndTime: at(10, 33), AllDay: true},
			ev("B", at(10, 35), at(10, 50)),
			{Id: "broken", Malformed: true},
		}

		result, err := Extend(events, at(10, 10), 10)
		require.NoError(t, err)

		ids := make([]string, 0, len(result.Overrides))
		for _, o := range result.Overrides {
			ids = append(ids, o.EventId)
		}
		assert.Equal(t, []string{"A", "B"}, ids)
	})

	t.Run("should extend an event that ended within the grace window", func(t *testing.T) {
		events := dayEvents()[2:]

		result, err := Extend(events, at(11, 17), 5)
		require.NoError(t, err)

		require.True(t, result.Applied)
		assert.Equal(t, at(11, 20), *result.Overrides[0].EndTime)
	})

	t.Run("should extend a just ended event and push the one that already started", func(t *testing.T) {
		// given
		events := []event.Event{
			ev("A", at(10, 0), at(10, 30)),
			ev("B", at(10, 30), at(11, 0)),
		}

		// when
		result, err := Extend(events, at(10, 32), 5)
		require.NoError(t, err)

		// then
		require.True(t, result.Applied)
		assert.Equal(t, "A", result.ActiveId)
		require.Len(t, result.Overrides, 2)
		updated := effective(events, result)
		assert.Equal(t, at(10, 35), find(updated, "A").EndTime)
		assert.Equal(t, at(10, 35), find(updated, "B").StartTime)
		assert.Equal(t, at(11, 5), find(updated, "B").EndTime)
	})

	t.Run("should share one batch id across all overrides", func(t *testing.T) {
		result, err := Extend(dayEvents(), at(10, 12), 10)
		require.NoError(t, err)

		assert.Equal(t, result.Overrides[0].BatchId, result.Overrides[1].BatchId)
		assert.Equal(t, at(10, 12), result.Overrides[1].UpdatedAt)
	})

	t.Run("should be a no-op without an active event", func(t *testing.T) {
		result, err := Extend(dayEvents(), at(8, 0), 10)

		require.NoError(t, err)
		assert.False(t, result.Applied)
		assert.Empty(t, result.Overrides)
	})

	t.Run("should reject non-positive minutes", func(t *testing.T) {
		_, err := Extend(dayEvents(), at(10, 12), 0)
		assert.ErrorIs(t, err, ErrInvalidMinutes)

		_, err = Extend(dayEvents(), at(10, 12), -5)
		assert.ErrorIs(t, err, ErrInvalidMinutes)
	})

	t.Run("should not modify the input list", func(t *testing.T) {
		events := dayEvents()

		_, err := Extend(events, at(10, 12), 10)
		require.NoError(t, err)

		assert.Equal(t, dayEvents(), events)
	})
}

func TestFinish(t *testing.T) {

	t.Run("should end the active event one second before now without cascading", func(t *testing.T) {
		// given
		events := dayEvents()

		// when
		result := Finish(events, at(10, 12))

		// then
		require.True(t, result.Applied)
		require.Len(t, result.Overrides, 1)
		updated := effective(events, result)
		assert.Equal(t, at(10, 12).Add(-time.Second), find(updated, "A").EndTime)
		assert.Equal(t, at(10, 25), find(updated, "B").StartTime)
		assert.Equal(t, at(10, 45), find(updated, "B").EndTime)
		assert.Equal(t, event.StatusExpired, event.Classify(at(10, 12), find(updated, "A").StartTime, find(updated, "A").EndTime))
	})

	t.Run("should not use the grace window", func(t *testing.T) {
		result := Finish(dayEvents(), at(10, 47))

		assert.False(t, result.Applied)
		assert.Empty(t, result.Overrides)
	})

	t.Run("should be a no-op without an active event", func(t *testing.T) {
		result := Finish(dayEvents(), at(12, 0))

		assert.False(t, result.Applied)
		assert.Equal(t, 0, result.Shifted())
	})
}
