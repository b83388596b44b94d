package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klokku/agenda/internal/rest"
	"github.com/klokku/agenda/pkg/settings"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar *Service
	validate *validator.Validate
	// onChange runs after a local event was added, modified or deleted.
	onChange func(ctx context.Context)
}

type EventDTO struct {
	UID      string    `json:"uid"`
	Title    string    `json:"title" validate:"max=500"`
	Start    time.Time `json:"start" validate:"required"`
	End      time.Time `json:"end" validate:"required,gtfield=Start"`
	AllDay   bool      `json:"allDay"`
	Location string    `json:"location" validate:"max=500"`
}

func NewHandler(s *Service, validate *validator.Validate, onChange func(ctx context.Context)) *Handler {
	if validate == nil {
		validate = validator.New()
	}
	if onChange == nil {
		onChange = func(context.Context) {}
	}
	return &Handler{calendar: s, validate: validate, onChange: onChange}
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
		return
	}

	events, err := h.calendar.GetEvents(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if settings.Current(r.Context()).ReadOnly() {
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
		return
	}
	dto, ok := h.decode(w, r)
	if !ok {
		return
	}
	added, err := h.calendar.AddEvent(r.Context(), dtoToEvent(dto))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.onChange(r.Context())
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(added))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	if settings.Current(r.Context()).ReadOnly() {
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
		return
	}
	uid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event uid", "")
		return
	}
	dto, ok := h.decode(w, r)
	if !ok {
		return
	}
	e := dtoToEvent(dto)
	e.UID = uid
	modified, err := h.calendar.ModifyEvent(r.Context(), e)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.onChange(r.Context())
	rest.WriteJSON(w, http.StatusOK, eventToDTO(modified))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if settings.Current(r.Context()).ReadOnly() {
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
		return
	}
	uid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event uid", "")
		return
	}
	if err := h.calendar.DeleteEvent(r.Context(), uid); err != nil {
		h.writeError(w, err)
		return
	}
	h.onChange(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (EventDTO, bool) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return EventDTO{}, false
	}
	if err := h.validate.Struct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
		return EventDTO{}, false
	}
	return dto, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrInvalidInterval):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	default:
		log.Errorf("local calendar request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(e LocalEvent) EventDTO {
	return EventDTO{
		UID:      e.UID.String(),
		Title:    e.Title,
		Start:    e.StartTime,
		End:      e.EndTime,
		AllDay:   e.AllDay,
		Location: e.Location,
	}
}

func dtoToEvent(dto EventDTO) LocalEvent {
	return LocalEvent{
		Title:     dto.Title,
		StartTime: dto.Start,
		EndTime:   dto.End,
		AllDay:    dto.AllDay,
		Location:  dto.Location,
	}
}
