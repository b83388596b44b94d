package announcement

import (
	"net/http"
	"strconv"
	"time"

	"github.com/klokku/agenda/internal/rest"
	"github.com/klokku/agenda/pkg/settings"
)

type AnnouncementDTO struct {
	Seq           int64     `json:"seq"`
	Kind          string    `json:"kind"`
	EventId       string    `json:"eventId"`
	Title         string    `json:"title"`
	NextTitle     string    `json:"nextTitle,omitempty"`
	At            time.Time `json:"at"`
	PlayTone      bool      `json:"playTone"`
	Speech        string    `json:"speech,omitempty"`
	SpeechDelayMs int64     `json:"speechDelayMs"`
	VoiceURI      string    `json:"voiceUri,omitempty"`
}

type AnnouncementsDTO struct {
	LastSeq       int64             `json:"lastSeq"`
	Announcements []AnnouncementDTO `json:"announcements"`
}

type Handler struct {
	announcer *Announcer
}

func NewHandler(announcer *Announcer) *Handler {
	return &Handler{announcer: announcer}
}

// GetAnnouncements godoc
// @Summary Announcements recorded after the given sequence number
// @Description Rendered with the sound and voice settings of the calling device
// @Tags Announcements
// @Produce json
// @Param after query int false "Last sequence number seen by the device"
// @Success 200 {object} AnnouncementsDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/announcements [get]
func (h *Handler) GetAnnouncements(w http.ResponseWriter, r *http.Request) {
	var after int64
	if value := r.URL.Query().Get("after"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed < 0 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid after parameter", "'after' must be a non-negative integer")
			return
		}
		after = parsed
	}

	device := settings.Current(r.Context())
	announcements := h.announcer.After(after)
	response := AnnouncementsDTO{
		LastSeq:       h.announcer.LastSeq(),
		Announcements: make([]AnnouncementDTO, 0, len(announcements)),
	}
	for _, a := range announcements {
		response.Announcements = append(response.Announcements, toDTO(Render(a, device)))
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

func toDTO(r Rendering) AnnouncementDTO {
	return AnnouncementDTO{
		Seq:           r.Seq,
		Kind:          string(r.Kind),
		EventId:       r.EventId,
		Title:         r.Title,
		NextTitle:     r.NextTitle,
		At:            r.At,
		PlayTone:      r.PlayTone,
		Speech:        r.Speech,
		SpeechDelayMs: r.SpeechDelay.Milliseconds(),
		VoiceURI:      r.VoiceURI,
	}
}
