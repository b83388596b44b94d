package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/pkg/settings"
	log "github.com/sirupsen/logrus"
)

const deviceIdHeader = "X-Device-Id"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	r.Use(deps.Metrics.Middleware)

	// Propagate X-Device-Id header into context as the device settings
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			deviceId := req.Header.Get(deviceIdHeader)
			ctx := req.Context()

			if deviceId == "" {
				ctx = settings.WithSettings(ctx, settings.Defaults(""))
			} else {
				s, err := deps.SettingsService.Get(ctx, deviceId)
				if err != nil {
					log.Errorf("failed to get settings of device %s: %v", deviceId, err)
					http.Error(w, "failed to load device settings", http.StatusServiceUnavailable)
					return
				}
				log.Tracef("device found: %s (role %q)", deviceId, s.Role)
				ctx = settings.WithSettings(ctx, s)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
