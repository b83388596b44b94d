package current_event

import (
	"time"

	"github.com/klokku/agenda/pkg/event"
)

// CurrentEvent is the active event together with its countdown at Now.
type CurrentEvent struct {
	Event     event.Event
	Now       time.Time
	Remaining time.Duration
	Critical  bool
}

// Change describes an operator action that was applied.
type Change struct {
	Action   string
	ActiveId string
	// Events are the effective events touched by the action, active one first.
	Events []event.Event
}

const (
	ActionExtend = "extend"
	ActionFinish = "finish"
	ActionRevert = "revert"
)
