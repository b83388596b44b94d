package refresh

import (
	"errors"
	"net/http"

	"github.com/klokku/agenda/internal/rest"
	"github.com/klokku/agenda/pkg/calendar"
)

type Handler struct {
	refresher *Refresher
}

func NewHandler(refresher *Refresher) *Handler {
	return &Handler{refresher: refresher}
}

// Refresh godoc
// @Summary Refresh the agenda from the calendar sources
// @Tags Agenda
// @Success 204 "No Content"
// @Failure 502 {object} rest.ErrorResponse
// @Router /api/agenda/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	err := h.refresher.Refresh(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, calendar.ErrAllSourcesFailed):
		rest.WriteError(w, http.StatusBadGateway, "Calendar sources unavailable", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Failed to refresh agenda", err.Error())
	}
}
