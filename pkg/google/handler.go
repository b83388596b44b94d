package google

import (
	"errors"
	"net/http"

	"github.com/klokku/agenda/internal/rest"
	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id              string `json:"id"`
	Summary         string `json:"summary"`
	Primary         bool   `json:"primary"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Synced          bool   `json:"synced"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

// ListCalendars godoc
// @Summary List the Google calendars readable with the current authorization
// @Tags Integrations
// @Produce json
// @Success 200 {array} CalendarItemDto
// @Failure 403 {object} rest.ErrorResponse "Google Calendar is not connected"
// @Router /api/integrations/google/calendars [get]
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			rest.WriteError(w, http.StatusForbidden, "Google Calendar is not connected", "")
			return
		}
		log.Errorf("failed to list Google calendars: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to list calendars", "")
		return
	}

	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}
	rest.WriteJSON(w, http.StatusOK, calendarItems)
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:              ci.ID,
		Summary:         ci.Summary,
		Primary:         ci.Primary,
		BackgroundColor: ci.BackgroundColor,
		Synced:          ci.Synced,
	}
}
