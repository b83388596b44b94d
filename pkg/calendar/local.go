package calendar

import (
	"time"

	"github.com/google/uuid"
)

const LocalCalendarId = "local"

// LocalEvent is an event entered directly into the agenda instead of an external calendar.
type LocalEvent struct {
	UID       uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
	AllDay    bool
	Location  string
}
