package settings

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const settingsKey contextKey = "device_settings"

func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey, s)
}

// Current returns the settings of the calling device. Requests without a device id get
// the defaults, which are not read-only.
func Current(ctx context.Context) Settings {
	s, ok := ctx.Value(settingsKey).(Settings)
	if !ok {
		log.Trace("device settings not found in context")
		return Defaults("")
	}
	return s
}
