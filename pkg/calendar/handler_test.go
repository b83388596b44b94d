package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/agenda/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, role settings.Role) (*mux.Router, *int) {
	changes := 0
	handler := NewHandler(setupService(t), nil, func(context.Context) { changes++ })
	device := settings.Defaults("kiosk-1")
	device.Role = role

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(settings.WithSettings(req.Context(), device)))
		})
	})
	r.HandleFunc("/api/calendar/event", handler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/event", handler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}", handler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/event/{eventUid}", handler.DeleteEvent).Methods("DELETE")
	return r, &changes
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_LocalEvents(t *testing.T) {

	t.Run("should create, list, update and delete an event", func(t *testing.T) {
		r, changes := setupRouter(t, settings.RolePA)

		w := serve(r, http.MethodPost, "/api/calendar/event",
			`{"title":"Visitor","start":"2026-02-14T12:00:00+06:00","end":"2026-02-14T12:20:00+06:00"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var created EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

		w = serve(r, http.MethodGet, "/api/calendar/event?from=2026-02-14T00:00:00%2B06:00&to=2026-02-15T00:00:00%2B06:00", "")
		require.Equal(t, http.StatusOK, w.Code)
		var listed []EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		require.Len(t, listed, 1)
		assert.Equal(t, created.UID, listed[0].UID)

		w = serve(r, http.MethodPut, "/api/calendar/event/"+created.UID,
			`{"title":"Visitor","start":"2026-02-14T12:00:00+06:00","end":"2026-02-14T12:40:00+06:00"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = serve(r, http.MethodDelete, "/api/calendar/event/"+created.UID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, 3, *changes)
	})

	t.Run("should reject an event ending before it starts", func(t *testing.T) {
		r, changes := setupRouter(t, settings.RolePA)

		w := serve(r, http.MethodPost, "/api/calendar/event",
			`{"title":"Visitor","start":"2026-02-14T12:00:00+06:00","end":"2026-02-14T11:00:00+06:00"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, *changes)
	})

	t.Run("should reject an invalid date range", func(t *testing.T) {
		r, _ := setupRouter(t, settings.RolePA)

		w := serve(r, http.MethodGet, "/api/calendar/event?from=yesterday&to=2026-02-15T00:00:00Z", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return 404 for an unknown event", func(t *testing.T) {
		r, _ := setupRouter(t, settings.RolePA)

		w := serve(r, http.MethodDelete, "/api/calendar/event/0b0c5a3e-6f1e-4c4b-9a36-6c1f0d9a2d11", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should refuse changes from a read-only device", func(t *testing.T) {
		r, _ := setupRouter(t, settings.RoleBoss)

		w := serve(r, http.MethodPost, "/api/calendar/event",
			`{"title":"Visitor","start":"2026-02-14T12:00:00+06:00","end":"2026-02-14T12:20:00+06:00"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
