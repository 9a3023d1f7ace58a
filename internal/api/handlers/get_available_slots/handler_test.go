package get_available_slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SpaBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
)

type stubUseCase struct {
	resp   *getAvailableSlots.Response
	err    error
	called *getAvailableSlots.Request
}

func (s *stubUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	s.called = req
	return s.resp, s.err
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/services/{serviceId}/available-slots", h.Handle).Methods(http.MethodGet)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandle_OK(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &getAvailableSlots.Response{
		Service: &domain.Service{ID: "1", Name: "Swedish Massage", DurationMinutes: 60, Price: 89.99},
		Date:    date,
		Slots: []domain.TimeSlot{
			{Time: "09:00", Available: false},
			{Time: "09:30", Available: true},
		},
	}}

	w := serve(NewHandler(uc, logger.Nop()), "/api/v1/services/1/available-slots?date=2025-06-10")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.called)
	assert.Equal(t, "1", uc.called.ServiceID)
	assert.True(t, date.Equal(uc.called.Date))

	var resp AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp.ServiceID)
	assert.Equal(t, "2025-06-10", resp.Date)
	assert.Equal(t, "Swedish Massage", resp.Service.Name)
	assert.Equal(t, []TimeSlot{{Time: "09:00", Available: false}, {Time: "09:30", Available: true}}, resp.TimeSlots)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		ucErr      error
		wantStatus int
		wantMsg    string
	}{
		{name: "missing date", target: "/api/v1/services/1/available-slots", wantStatus: http.StatusBadRequest, wantMsg: msgMissingDate},
		{name: "bad date", target: "/api/v1/services/1/available-slots?date=2025-13-01", wantStatus: http.StatusBadRequest, wantMsg: msgInvalidDate},
		{name: "unknown service", target: "/api/v1/services/99/available-slots?date=2025-06-10", ucErr: getAvailableSlots.ErrServiceNotFound, wantStatus: http.StatusNotFound, wantMsg: msgServiceNotFound},
		{name: "invalid input", target: "/api/v1/services/1/available-slots?date=2025-06-10", ucErr: fmt.Errorf("%w: date is required", getAvailableSlots.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantMsg: msgInvalidInput},
		{name: "internal", target: "/api/v1/services/1/available-slots?date=2025-06-10", ucErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{err: tt.ucErr}
			w := serve(NewHandler(uc, logger.Nop()), tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantMsg+`"}`, w.Body.String())
		})
	}
}
