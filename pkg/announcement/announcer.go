package announcement

import (
	"sync"

	"github.com/klokku/agenda/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

const DefaultCapacity = 100

// Announcer turns active event changes into announcements and keeps the latest ones
// for devices polling for them.
type Announcer struct {
	mu       sync.Mutex
	capacity int
	seq      int64
	recent   []Announcement
}

func NewAnnouncer(capacity int) *Announcer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Announcer{capacity: capacity, recent: make([]Announcement, 0, capacity)}
}

// Subscribe records an announcement for every ActiveEventChanged published on bus.
func (a *Announcer) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped[event_bus.ActiveEventChanged](bus, event_bus.ActiveEventChangedType,
		func(e event_bus.EventT[event_bus.ActiveEventChanged]) error {
			a.Record(e.Data)
			return nil
		})
}

// Record stores the announcements for one change: "ended" when an event was active
// before, "started" when nothing was active before and something is now.
func (a *Announcer) Record(change event_bus.ActiveEventChanged) []Announcement {
	a.mu.Lock()
	defer a.mu.Unlock()

	var recorded []Announcement
	ongoing := change.CurrentId != ""
	if change.PreviousId != "" && change.PreviousId != change.CurrentId {
		recorded = append(recorded, a.append(Announcement{
			Kind:      KindEnded,
			EventId:   change.PreviousId,
			Title:     change.PreviousTitle,
			NextTitle: change.NextTitle,
			Ongoing:   ongoing,
			At:        change.At,
		}))
	}
	if change.PreviousId == "" && ongoing {
		recorded = append(recorded, a.append(Announcement{
			Kind:      KindStarted,
			EventId:   change.CurrentId,
			Title:     change.CurrentTitle,
			NextTitle: change.NextTitle,
			Ongoing:   true,
			At:        change.At,
		}))
	}
	for _, r := range recorded {
		log.Debugf("Announcement %d: %s %q", r.Seq, r.Kind, r.Title)
	}
	return recorded
}

// append must be called with mu held.
func (a *Announcer) append(announcement Announcement) Announcement {
	a.seq++
	announcement.Seq = a.seq
	if len(a.recent) == a.capacity {
		copy(a.recent, a.recent[1:])
		a.recent = a.recent[:len(a.recent)-1]
	}
	a.recent = append(a.recent, announcement)
	return announcement
}

// After returns the kept announcements with a sequence number greater than seq, oldest first.
func (a *Announcer) After(seq int64) []Announcement {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Announcement, 0, len(a.recent))
	for _, announcement := range a.recent {
		if announcement.Seq > seq {
			result = append(result, announcement)
		}
	}
	return result
}

// LastSeq is the sequence number of the latest announcement, 0 when there is none.
func (a *Announcer) LastSeq() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seq
}
