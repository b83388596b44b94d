package app

import (
	"github.com/gorilla/mux"
	"github.com/klokku/agenda/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Current event
	r.HandleFunc("/api/event/current", deps.CurrentEventHandler.GetCurrentEvent).Methods("GET")
	r.HandleFunc("/api/event/current/extend", deps.CurrentEventHandler.ExtendCurrentEvent).Methods("PATCH")
	r.HandleFunc("/api/event/current/finish", deps.CurrentEventHandler.FinishCurrentEvent).Methods("PATCH")

	// Agenda
	r.HandleFunc("/api/agenda", deps.CurrentEventHandler.GetAgenda).Methods("GET")
	r.HandleFunc("/api/agenda/refresh", deps.RefreshHandler.Refresh).Methods("POST")
	r.HandleFunc("/api/overrides", deps.CurrentEventHandler.GetOverrides).Methods("GET")
	r.HandleFunc("/api/overrides/{eventId}", deps.CurrentEventHandler.RevertOverride).Methods("DELETE")
	r.HandleFunc("/api/announcements", deps.AnnouncementHandler.GetAnnouncements).Methods("GET")

	// Device settings
	r.HandleFunc("/api/settings", deps.SettingsHandler.GetSettings).Methods("GET")
	r.HandleFunc("/api/settings", deps.SettingsHandler.UpdateSettings).Methods("PUT")
	r.HandleFunc("/api/flash", deps.SettingsHandler.GetFlash).Methods("GET")
	r.HandleFunc("/api/flash", deps.SettingsHandler.SetFlash).Methods("PUT")
	r.HandleFunc("/api/flash", deps.SettingsHandler.ClearFlash).Methods("DELETE")

	// Local calendar
	r.HandleFunc("/api/calendar/event", deps.LocalCalendarHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/calendar/event", deps.LocalCalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.LocalCalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.LocalCalendarHandler.DeleteEvent).Methods("DELETE")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")

	r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
}
