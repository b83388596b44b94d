package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceStub struct {
	calendars []CalendarItem
	err       error
}

func (s *serviceStub) GetCalendar(calendarIds []string) *Calendar {
	return nil
}

func (s *serviceStub) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	return s.calendars, s.err
}

func listCalendars(t *testing.T, service Service) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/integrations/google/calendars", NewHandler(service).ListCalendars).Methods("GET")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/integrations/google/calendars", nil))
	return rr
}

func TestHandler_ListCalendars(t *testing.T) {

	t.Run("should list calendars", func(t *testing.T) {
		rr := listCalendars(t, &serviceStub{calendars: []CalendarItem{{ID: "primary", Summary: "Owner", Primary: true, Synced: true}}})

		require.Equal(t, http.StatusOK, rr.Code)
		var body []CalendarItemDto
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, []CalendarItemDto{{Id: "primary", Summary: "Owner", Primary: true, Synced: true}}, body)
	})

	t.Run("should return forbidden without authorization", func(t *testing.T) {
		rr := listCalendars(t, &serviceStub{err: ErrUnauthenticated})

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("should return internal error when Google fails", func(t *testing.T) {
		rr := listCalendars(t, &serviceStub{err: errors.New("backend error")})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
