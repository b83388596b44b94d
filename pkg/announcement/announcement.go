package announcement

import (
	"fmt"
	"time"

	"github.com/klokku/agenda/pkg/settings"
)

type Kind string

const (
	// KindEnded is recorded when the previously active event stopped being active.
	KindEnded   Kind = "ended"
	KindStarted Kind = "started"
)

const SpeechDelay = 1500 * time.Millisecond

type Announcement struct {
	Seq  int64
	Kind Kind
	// EventId and Title describe the event that ended or started.
	EventId   string
	Title     string
	NextTitle string
	// Ongoing tells whether another event was active at the time of the announcement.
	Ongoing bool
	At      time.Time
}

// Rendering is what a device should play for an announcement.
type Rendering struct {
	Announcement
	PlayTone    bool
	Speech      string
	SpeechDelay time.Duration
	VoiceURI    string
}

// Render applies the device's sound and voice settings to an announcement.
func Render(a Announcement, s settings.Settings) Rendering {
	r := Rendering{Announcement: a}
	switch a.Kind {
	case KindEnded:
		r.PlayTone = s.ShouldPlaySound()
		if !s.VoiceEnabled {
			break
		}
		switch {
		case a.NextTitle != "":
			r.Speech = fmt.Sprintf("The next event is %s.", a.NextTitle)
		case !a.Ongoing:
			r.Speech = "You have no more events for today."
		}
		if r.Speech != "" {
			r.SpeechDelay = SpeechDelay
		}
	case KindStarted:
		if s.VoiceEnabled {
			r.Speech = "Starting now: " + a.Title
		}
	}
	if r.Speech != "" {
		r.VoiceURI = s.VoiceURI
	}
	return r
}
