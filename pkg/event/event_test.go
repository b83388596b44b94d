package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location, _ = time.LoadLocation("Asia/Dhaka")

func at(hour, minute int) time.Time {
	return time.Date(2026, time.February, 14, hour, minute, 0, 0, location)
}

func TestClassify(t *testing.T) {
	start := at(10, 0)
	end := at(10, 30)

	t.Run("should be upcoming before start", func(t *testing.T) {
		assert.Equal(t, StatusUpcoming, Classify(start.Add(-time.Millisecond), start, end))
	})

	t.Run("should be ongoing exactly at start", func(t *testing.T) {
		assert.Equal(t, StatusOngoing, Classify(start, start, end))
	})

	t.Run("should be ongoing just before end", func(t *testing.T) {
		assert.Equal(t, StatusOngoing, Classify(end.Add(-time.Millisecond), start, end))
	})

	t.Run("should be expired exactly at end", func(t *testing.T) {
		assert.Equal(t, StatusExpired, Classify(end, start, end))
	})

	t.Run("zero width event is expired at its instant", func(t *testing.T) {
		assert.Equal(t, StatusExpired, Classify(start, start, start))
		assert.Equal(t, StatusUpcoming, Classify(start.Add(-time.Second), start, start))
	})

	t.Run("exactly one status holds across a sweep", func(t *testing.T) {
		for now := start.Add(-5 * time.Minute); now.Before(end.Add(5 * time.Minute)); now = now.Add(30 * time.Second) {
			status := Classify(now, start, end)
			expected := StatusUpcoming
			if !now.Before(start) {
				expected = StatusOngoing
			}
			if !now.Before(end) {
				expected = StatusExpired
			}
			assert.Equal(t, expected, status, "now=%s", now)
		}
	})

	t.Run("should return the same status for the same input", func(t *testing.T) {
		now := at(10, 15)
		first := Classify(now, start, end)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Classify(now, start, end))
		}
	})
}

func TestClassifyAll(t *testing.T) {
	events := []Event{
		{Id: "a", StartTime: at(9, 0), EndTime: at(9, 30)},
		{Id: "b", StartTime: at(10, 0), EndTime: at(10, 30)},
		{Id: "c", StartTime: at(11, 0), EndTime: at(11, 30)},
		{Id: "broken", Malformed: true},
	}

	classified := ClassifyAll(at(10, 10), events)

	assert.Equal(t, StatusExpired, classified[0].Status)
	assert.Equal(t, StatusOngoing, classified[1].Status)
	assert.Equal(t, StatusUpcoming, classified[2].Status)
	assert.Equal(t, StatusUnknown, classified[3].Status)
	// input untouched
	assert.Equal(t, StatusUnknown, events[1].Status)
	assert.Equal(t, at(10, 0), classified[1].StartTime)
}

func TestDurationAndInverted(t *testing.T) {
	inverted := Event{StartTime: at(10, 30), EndTime: at(10, 0)}
	assert.True(t, inverted.Inverted())
	assert.Equal(t, time.Duration(0), inverted.Duration())
	assert.False(t, inverted.Schedulable())

	regular := Event{StartTime: at(10, 0), EndTime: at(10, 45)}
	assert.Equal(t, 45*time.Minute, regular.Duration())
	assert.True(t, regular.Schedulable())

	allDay := Event{StartTime: at(0, 0), EndTime: at(0, 0).AddDate(0, 0, 1), AllDay: true}
	assert.False(t, allDay.Schedulable())
}

func TestSortByStart(t *testing.T) {
	events := []Event{
		{Id: "late", StartTime: at(12, 0)},
		{Id: "broken", Malformed: true},
		{Id: "b", StartTime: at(9, 0)},
		{Id: "a", StartTime: at(9, 0)},
	}

	SortByStart(events)

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.Id)
	}
	assert.Equal(t, []string{"a", "b", "late", "broken"}, ids)
}

func TestDedupe(t *testing.T) {
	events := []Event{
		{Id: "a", Title: "first"},
		{Id: "b", Title: "other"},
		{Id: "a", Title: "second"},
	}

	result := Dedupe(events)

	require.Len(t, result, 2)
	assert.Equal(t, "second", result[0].Title)
	assert.Equal(t, "other", result[1].Title)
}

func TestFromRaw(t *testing.T) {
	t.Run("should parse RFC3339 instants", func(t *testing.T) {
		e := FromRaw(RawEvent{
			Id:         "evt-1",
			Title:      "Standup",
			StartAt:    "2026-02-14T10:00:00+06:00",
			EndAt:      "2026-02-14T10:15:00.500+06:00",
			CalendarId: "work",
		}, location)

		assert.False(t, e.Malformed)
		assert.True(t, e.StartTime.Equal(at(10, 0)))
		assert.Equal(t, 15*time.Minute+500*time.Millisecond, e.Duration())
		assert.Equal(t, "work", e.CalendarId)
	})

	t.Run("should read all-day dates in the given location", func(t *testing.T) {
		e := FromRaw(RawEvent{Id: "d", StartAt: "2026-02-14T00:00:00", EndAt: "2026-02-15", AllDay: true}, location)

		assert.False(t, e.Malformed)
		assert.True(t, e.StartTime.Equal(at(0, 0)))
		assert.Equal(t, 24*time.Hour, e.Duration())
	})

	t.Run("should mark unparseable timestamps as malformed", func(t *testing.T) {
		e := FromRaw(RawEvent{Id: "x", Title: "Broken", StartAt: "tomorrow-ish", EndAt: "2026-02-14T10:00:00Z"}, location)

		assert.True(t, e.Malformed)
		assert.Equal(t, "Broken", e.Title)
		assert.Equal(t, "tomorrow-ish", e.RawStartAt)
		assert.Equal(t, "2026-02-14T10:00:00Z", e.RawEndAt)
		assert.False(t, e.Schedulable())
	})

	t.Run("should default empty titles", func(t *testing.T) {
		e := FromRaw(RawEvent{Id: "y", StartAt: "2026-02-14T10:00:00Z", EndAt: "2026-02-14T11:00:00Z"}, location)
		assert.Equal(t, NoTitle, e.Title)
	})
}
