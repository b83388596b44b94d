package settings

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/klokku/agenda/internal/rest"
	log "github.com/sirupsen/logrus"
)

type SettingsDTO struct {
	DeviceId               string   `json:"deviceId"`
	Role                   string   `json:"role" validate:"omitempty,oneof=boss pa"`
	BlinkEnabled           bool     `json:"blinkEnabled"`
	RefreshIntervalMinutes int      `json:"refreshIntervalMinutes" validate:"required,gte=1,lte=60"`
	SelectedCalendars      []string `json:"selectedCalendars" validate:"omitempty,dive,required"`
	SoundEnabledBoss       bool     `json:"soundEnabledBoss"`
	SoundEnabledPA         bool     `json:"soundEnabledPA"`
	VoiceEnabled           bool     `json:"voiceEnabled"`
	VoiceURI               string   `json:"voiceURI" validate:"max=512"`
	ReadOnly               bool     `json:"readOnly"`
}

type FlashMessageDTO struct {
	Message   string `json:"message" validate:"max=500"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service, validate *validator.Validate) *Handler {
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{service: service, validate: validate}
}

// GetSettings godoc
// @Summary Get the settings of the calling device
// @Tags Settings
// @Produce json
// @Param X-Device-Id header string true "Device id"
// @Success 200 {object} SettingsDTO
// @Router /api/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, toDTO(Current(r.Context())))
}

// UpdateSettings godoc
// @Summary Replace the settings of the calling device
// @Tags Settings
// @Accept json
// @Produce json
// @Param X-Device-Id header string true "Device id"
// @Param settings body SettingsDTO true "Settings"
// @Success 200 {object} SettingsDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	deviceId := Current(r.Context()).DeviceId
	if deviceId == "" {
		rest.WriteError(w, http.StatusBadRequest, "X-Device-Id header is required", "")
		return
	}

	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}

	settings := fromDTO(dto)
	settings.DeviceId = deviceId
	updated, err := h.service.Update(r.Context(), settings)
	if err != nil {
		if errors.Is(err, ErrInvalidRole) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		log.Errorf("failed to update settings: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// GetFlash godoc
// @Summary Get the flash message shown on all devices
// @Tags Settings
// @Produce json
// @Success 200 {object} FlashMessageDTO
// @Router /api/flash [get]
func (h *Handler) GetFlash(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetFlash(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, flashToDTO(m))
}

// SetFlash godoc
// @Summary Replace the flash message
// @Tags Settings
// @Accept json
// @Produce json
// @Param message body FlashMessageDTO true "Flash message"
// @Success 200 {object} FlashMessageDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 403 {object} rest.ErrorResponse "Read-only device"
// @Router /api/flash [put]
func (h *Handler) SetFlash(w http.ResponseWriter, r *http.Request) {
	if Current(r.Context()).ReadOnly() {
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
		return
	}
	var dto FlashMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid flash message", err.Error())
		return
	}
	m, err := h.service.SetFlash(r.Context(), dto.Message)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, flashToDTO(m))
}

// ClearFlash godoc
// @Summary Remove the flash message
// @Tags Settings
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Read-only device"
// @Router /api/flash [delete]
func (h *Handler) ClearFlash(w http.ResponseWriter, r *http.Request) {
	if Current(r.Context()).ReadOnly() {
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
		return
	}
	if _, err := h.service.SetFlash(r.Context(), ""); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toDTO(s Settings) SettingsDTO {
	calendars := s.SelectedCalendars
	if calendars == nil {
		calendars = []string{}
	}
	return SettingsDTO{
		DeviceId:               s.DeviceId,
		Role:                   string(s.Role),
		BlinkEnabled:           s.BlinkEnabled,
		RefreshIntervalMinutes: s.RefreshIntervalMinutes,
		SelectedCalendars:      calendars,
		SoundEnabledBoss:       s.SoundEnabledBoss,
		SoundEnabledPA:         s.SoundEnabledPA,
		VoiceEnabled:           s.VoiceEnabled,
		VoiceURI:               s.VoiceURI,
		ReadOnly:               s.ReadOnly(),
	}
}

func fromDTO(dto SettingsDTO) Settings {
	return Settings{
		Role:                   Role(dto.Role),
		BlinkEnabled:           dto.BlinkEnabled,
		RefreshIntervalMinutes: dto.RefreshIntervalMinutes,
		SelectedCalendars:      dto.SelectedCalendars,
		SoundEnabledBoss:       dto.SoundEnabledBoss,
		SoundEnabledPA:         dto.SoundEnabledPA,
		VoiceEnabled:           dto.VoiceEnabled,
		VoiceURI:               dto.VoiceURI,
	}
}

func flashToDTO(m FlashMessage) FlashMessageDTO {
	dto := FlashMessageDTO{Message: m.Text}
	if !m.UpdatedAt.IsZero() {
		dto.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}
