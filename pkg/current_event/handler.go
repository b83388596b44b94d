package current_event

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/klokku/agenda/internal/rest"
	"github.com/klokku/agenda/pkg/event"
	"github.com/klokku/agenda/pkg/override"
	"github.com/klokku/agenda/pkg/settings"
	"github.com/klokku/agenda/pkg/timing"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	Id         string `json:"id"`
	Title      string `json:"title"`
	StartAt    string `json:"startAt,omitempty"`
	EndAt      string `json:"endAt,omitempty"`
	AllDay     bool   `json:"allDay"`
	CalendarId string `json:"calendarId,omitempty"`
	Location   string `json:"location,omitempty"`
	HtmlLink   string `json:"htmlLink,omitempty"`
	Status     string `json:"status"`
	Malformed  bool   `json:"malformed,omitempty"`
}

type CurrentEventDTO struct {
	Event     EventDTO `json:"event"`
	Remaining string   `json:"remaining"`
	Critical  bool     `json:"critical"`
}

type ChangeDTO struct {
	Action   string     `json:"action"`
	ActiveId string     `json:"activeId"`
	Events   []EventDTO `json:"events"`
}

type AgendaDTO struct {
	ClassifiedAt string     `json:"classifiedAt"`
	Events       []EventDTO `json:"events"`
}

type OverrideDTO struct {
	EventId   string `json:"eventId"`
	StartAt   string `json:"startAt,omitempty"`
	EndAt     string `json:"endAt,omitempty"`
	BatchId   string `json:"batchId"`
	UpdatedAt string `json:"updatedAt"`
}

type ExtendRequest struct {
	Minutes int `json:"minutes" validate:"required,gt=0,lte=720"`
}

type EventHandler struct {
	eventService Service
	validate     *validator.Validate
}

func NewEventHandler(eventService Service, validate *validator.Validate) *EventHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &EventHandler{eventService: eventService, validate: validate}
}

// GetCurrentEvent godoc
// @Summary Get the active event with its countdown
// @Tags Event
// @Produce json
// @Success 200 {object} CurrentEventDTO
// @Failure 404 {string} string "No current event"
// @Router /api/event/current [get]
func (e *EventHandler) GetCurrentEvent(w http.ResponseWriter, r *http.Request) {
	current, err := e.eventService.FindCurrentEvent(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoCurrentEvent) {
			http.Error(w, "No current event", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, CurrentEventDTO{
		Event:     eventToDTO(current.Event),
		Remaining: timing.FormatRemaining(current.Remaining),
		Critical:  current.Critical,
	})
}

// ExtendCurrentEvent godoc
// @Summary Extend the active event and push overlapping events after it
// @Tags Event
// @Accept json
// @Produce json
// @Param request body ExtendRequest true "Minutes to add"
// @Success 200 {object} ChangeDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 403 {object} rest.ErrorResponse "Read-only device"
// @Failure 404 {object} rest.ErrorResponse "No current event"
// @Router /api/event/current/extend [patch]
func (e *EventHandler) ExtendCurrentEvent(w http.ResponseWriter, r *http.Request) {
	var request ExtendRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if err := e.validate.Struct(request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid minutes", "Minutes must be between 1 and 720")
		return
	}
	log.Debugf("Extending current event by %d minutes", request.Minutes)

	change, err := e.eventService.ExtendCurrentEvent(r.Context(), request.Minutes)
	if err != nil {
		e.writeActionError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, changeToDTO(change))
}

// FinishCurrentEvent godoc
// @Summary End the active event now
// @Tags Event
// @Produce json
// @Success 200 {object} ChangeDTO
// @Failure 403 {object} rest.ErrorResponse "Read-only device"
// @Failure 404 {object} rest.ErrorResponse "No current event"
// @Router /api/event/current/finish [patch]
func (e *EventHandler) FinishCurrentEvent(w http.ResponseWriter, r *http.Request) {
	change, err := e.eventService.FinishCurrentEvent(r.Context())
	if err != nil {
		e.writeActionError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, changeToDTO(change))
}

// GetAgenda godoc
// @Summary List the effective events with their status
// @Description Limited to the calendars selected by the calling device, all when none is selected
// @Tags Event
// @Produce json
// @Success 200 {object} AgendaDTO
// @Router /api/agenda [get]
func (e *EventHandler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	snapshot := e.eventService.Agenda(r.Context())
	response := AgendaDTO{Events: make([]EventDTO, 0, len(snapshot.Events))}
	if !snapshot.ClassifiedAt.IsZero() {
		response.ClassifiedAt = snapshot.ClassifiedAt.Format(time.RFC3339)
	}
	selected := settings.Current(r.Context()).SelectedCalendars
	for _, ev := range snapshot.Events {
		if len(selected) > 0 && !slices.Contains(selected, ev.CalendarId) {
			continue
		}
		response.Events = append(response.Events, eventToDTO(ev))
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

// GetOverrides godoc
// @Summary List manual timing overrides
// @Tags Event
// @Produce json
// @Success 200 {array} OverrideDTO
// @Router /api/overrides [get]
func (e *EventHandler) GetOverrides(w http.ResponseWriter, r *http.Request) {
	all := e.eventService.Agenda(r.Context()).Overrides.All()
	response := make([]OverrideDTO, 0, len(all))
	for _, o := range all {
		response = append(response, overrideToDTO(o))
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

// RevertOverride godoc
// @Summary Drop the override of an event
// @Tags Event
// @Param eventId path string true "Event id"
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Read-only device"
// @Failure 404 {object} rest.ErrorResponse "Override not found"
// @Router /api/overrides/{eventId} [delete]
func (e *EventHandler) RevertOverride(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	if err := e.eventService.RevertOverride(r.Context(), eventId); err != nil {
		e.writeActionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *EventHandler) writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReadOnly):
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
	case errors.Is(err, ErrNoCurrentEvent):
		rest.WriteError(w, http.StatusNotFound, "No current event", "")
	case errors.Is(err, ErrOverrideNotFound):
		rest.WriteError(w, http.StatusNotFound, "Override not found", "")
	default:
		log.Errorf("operator action failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(ev event.Event) EventDTO {
	dto := EventDTO{
		Id:         ev.Id,
		Title:      ev.Title,
		AllDay:     ev.AllDay,
		CalendarId: ev.CalendarId,
		Location:   ev.Location,
		HtmlLink:   ev.HtmlLink,
		Status:     string(ev.Status),
		Malformed:  ev.Malformed,
	}
	if ev.Malformed {
		dto.StartAt = ev.RawStartAt
		dto.EndAt = ev.RawEndAt
	} else {
		dto.StartAt = ev.StartTime.Format(time.RFC3339)
		dto.EndAt = ev.EndTime.Format(time.RFC3339)
	}
	return dto
}

func changeToDTO(change Change) ChangeDTO {
	dto := ChangeDTO{
		Action:   change.Action,
		ActiveId: change.ActiveId,
		Events:   make([]EventDTO, 0, len(change.Events)),
	}
	for _, ev := range change.Events {
		dto.Events = append(dto.Events, eventToDTO(ev))
	}
	return dto
}

func overrideToDTO(o override.Override) OverrideDTO {
	dto := OverrideDTO{
		EventId:   o.EventId,
		BatchId:   o.BatchId.String(),
		UpdatedAt: o.UpdatedAt.Format(time.RFC3339),
	}
	if o.StartTime != nil {
		dto.StartAt = o.StartTime.Format(time.RFC3339)
	}
	if o.EndTime != nil {
		dto.EndAt = o.EndTime.Format(time.RFC3339)
	}
	return dto
}
