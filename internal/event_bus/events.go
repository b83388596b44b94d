package event_bus

import "time"

// ActiveEventChanged is published on the tick where the active event id changes.
// An empty id means no event was (or is) active.
type ActiveEventChanged struct {
	PreviousId    string
	PreviousTitle string
	CurrentId     string
	CurrentTitle  string
	// NextTitle is the title of the first upcoming event at the time of the change.
	NextTitle string
	At        time.Time
}

// OverridesApplied is published after an operator action committed its overrides.
type OverridesApplied struct {
	Action   string
	ActiveId string
	EventIds []string
	At       time.Time
}

type SourceRefreshed struct {
	Events           int
	DroppedOverrides []string
	At               time.Time
}
