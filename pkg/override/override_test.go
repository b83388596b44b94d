package override

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/agenda/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location, _ = time.LoadLocation("Europe/Warsaw")

func at(hour, minute int) time.Time {
	return time.Date(2025, time.December, 20, hour, minute, 0, 0, location)
}

func TestSet(t *testing.T) {

	t.Run("should not modify the receiver", func(t *testing.T) {
		base := NewSet(EndAt("a", at(10, 40)))

		extended := base.With(Move("b", at(10, 40), at(11, 0)))

		assert.Equal(t, 1, base.Len())
		assert.Equal(t, 2, extended.Len())
		_, ok := base.Get("b")
		assert.False(t, ok)
	})

	t.Run("should merge fields with latest write winning", func(t *testing.T) {
		set := NewSet(Move("a", at(10, 5), at(10, 30)))

		set = set.With(EndAt("a", at(10, 50)))

		o, ok := set.Get("a")
		require.True(t, ok)
		assert.Equal(t, at(10, 5), *o.StartTime)
		assert.Equal(t, at(10, 50), *o.EndTime)
	})

	t.Run("should ignore empty overrides", func(t *testing.T) {
		set := NewSet(Override{EventId: "a"})
		assert.Equal(t, 0, set.Len())
	})

	t.Run("should remove overrides without touching the original", func(t *testing.T) {
		set := NewSet(EndAt("a", at(10, 0)), EndAt("b", at(11, 0)))

		smaller := set.Without("a", "missing")

		assert.Equal(t, 2, set.Len())
		assert.Equal(t, 1, smaller.Len())
		assert.Equal(t, "b", smaller.All()[0].EventId)
	})

	t.Run("zero value is usable", func(t *testing.T) {
		var set Set
		assert.Equal(t, 0, set.Len())
		assert.Empty(t, set.All())
		_, ok := set.Get("a")
		assert.False(t, ok)
	})
}

func TestNewBatch(t *testing.T) {
	now := at(10, 12)

	batch := NewBatch(now, EndAt("a", at(10, 40)), Move("b", at(10, 40), at(11, 0)))

	require.Len(t, batch, 2)
	assert.NotEqual(t, uuid.Nil, batch[0].BatchId)
	assert.Equal(t, batch[0].BatchId, batch[1].BatchId)
	assert.Equal(t, now, batch[1].UpdatedAt)
}

func TestApply(t *testing.T) {
	source := []event.Event{
		{Id: "b", StartTime: at(10, 25), EndTime: at(10, 45)},
		{Id: "a", StartTime: at(10, 0), EndTime: at(10, 30)},
		{Id: "broken", Malformed: true},
	}
	set := NewSet(EndAt("a", at(10, 40)), Move("b", at(10, 40), at(11, 0)), EndAt("broken", at(12, 0)))

	effective := Apply(source, set)

	require.Len(t, effective, 3)
	assert.Equal(t, "a", effective[0].Id)
	assert.Equal(t, at(10, 0), effective[0].StartTime)
	assert.Equal(t, at(10, 40), effective[0].EndTime)
	assert.Equal(t, "b", effective[1].Id)
	assert.Equal(t, at(10, 40), effective[1].StartTime)
	assert.Equal(t, at(11, 0), effective[1].EndTime)
	assert.True(t, effective[2].Malformed)
	assert.True(t, effective[2].EndTime.IsZero())
	// source untouched
	assert.Equal(t, at(10, 25), source[0].StartTime)
}

func TestReconcile(t *testing.T) {
	now := at(10, 20)

	t.Run("should keep an extension while the source still ends earlier", func(t *testing.T) {
		fresh := []event.Event{{Id: "a", StartTime: at(10, 0), EndTime: at(10, 30)}}

		set, dropped := Reconcile(fresh, NewSet(EndAt("a", at(10, 40))), now)

		o, ok := set.Get("a")
		require.True(t, ok)
		assert.Equal(t, at(10, 40), *o.EndTime)
		assert.Empty(t, dropped)
	})

	t.Run("should drop an extension once the source caught up", func(t *testing.T) {
		fresh := []event.Event{{Id: "a", StartTime: at(10, 0), EndTime: at(10, 45)}}

		set, dropped := Reconcile(fresh, NewSet(EndAt("a", at(10, 40))), now)

		assert.Equal(t, 0, set.Len())
		assert.Equal(t, []string{"a"}, dropped)
	})

	t.Run("should keep an early finish that already happened", func(t *testing.T) {
		fresh := []event.Event{{Id: "a", StartTime: at(10, 0), EndTime: at(10, 30)}}

		set, _ := Reconcile(fresh, NewSet(EndAt("a", at(10, 11))), now)

		o, ok := set.Get("a")
		require.True(t, ok)
		assert.Equal(t, at(10, 11), *o.EndTime)
	})

	t.Run("should drop an earlier end that lies in the future", func(t *testing.T) {
		fresh := []event.Event{{Id: "a", StartTime: at(10, 0), EndTime: at(10, 30)}}

		set, _ := Reconcile(fresh, NewSet(EndAt("a", at(10, 25))), now)

		assert.Equal(t, 0, set.Len())
	})

	t.Run("should keep a push while the source still starts earlier", func(t *testing.T) {
		fresh := []event.Event{{Id: "b", StartTime: at(10, 25), EndTime: at(10, 45)}}

		set, _ := Reconcile(fresh, NewSet(Move("b", at(10, 40), at(11, 0))), now)

		o, ok := set.Get("b")
		require.True(t, ok)
		assert.Equal(t, at(10, 40), *o.StartTime)
		assert.Equal(t, at(11, 0), *o.EndTime)
	})

	t.Run("should drop the start of a push when the source moved past it", func(t *testing.T) {
		fresh := []event.Event{{Id: "b", StartTime: at(10, 50), EndTime: at(10, 55)}}

		set, _ := Reconcile(fresh, NewSet(Move("b", at(10, 40), at(11, 0))), now)

		o, ok := set.Get("b")
		require.True(t, ok)
		assert.Nil(t, o.StartTime)
		assert.Equal(t, at(11, 0), *o.EndTime)
	})

	t.Run("should drop overrides of events gone from the source", func(t *testing.T) {
		set, dropped := Reconcile(nil, NewSet(EndAt("gone", at(10, 40))), now)

		assert.Equal(t, 0, set.Len())
		assert.Equal(t, []string{"gone"}, dropped)
	})
}
