package settings

import "time"

type Role string

const (
	RoleNone Role = ""
	// RoleBoss devices only watch the agenda.
	RoleBoss Role = "boss"
	RolePA   Role = "pa"
)

// Settings of a single display device, identified by the X-Device-Id header.
type Settings struct {
	DeviceId               string
	Role                   Role
	BlinkEnabled           bool
	RefreshIntervalMinutes int
	SelectedCalendars      []string
	SoundEnabledBoss       bool
	SoundEnabledPA         bool
	VoiceEnabled           bool
	VoiceURI               string
}

func Defaults(deviceId string) Settings {
	return Settings{
		DeviceId:               deviceId,
		BlinkEnabled:           true,
		RefreshIntervalMinutes: 2,
		SelectedCalendars:      []string{},
		SoundEnabledBoss:       true,
		SoundEnabledPA:         true,
	}
}

func (s Settings) ReadOnly() bool {
	return s.Role == RoleBoss
}

// ShouldPlaySound reports whether the ending tone is enabled for the device's role.
func (s Settings) ShouldPlaySound() bool {
	switch s.Role {
	case RoleBoss:
		return s.SoundEnabledBoss
	case RolePA:
		return s.SoundEnabledPA
	default:
		return false
	}
}

// FlashMessage is shown on every device until cleared.
type FlashMessage struct {
	Text      string
	UpdatedAt time.Time
}
