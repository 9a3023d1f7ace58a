package get_customer_appointments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
)

type stubService struct {
	resp  *models.AppointmentListResponse
	err   error
	gotID string
}

func (s *stubService) GetCustomerAppointments(_ context.Context, customerID string) (*models.AppointmentListResponse, error) {
	s.gotID = customerID
	return s.resp, s.err
}

func serve(h *Handler) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/customers/{customerId}/appointments", h.Handle).Methods(http.MethodGet)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/customers/c1/appointments", nil))
	return w
}

func TestHandle_OK(t *testing.T) {
	svc := &stubService{resp: &models.AppointmentListResponse{Appointments: []models.EnrichedAppointmentResponse{
		{ID: "a1", CustomerID: "c1", ServiceName: "Facial Treatment", Status: "cancelled"},
	}}}

	w := serve(NewHandler(svc, logger.Nop()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", svc.gotID)
	assert.Contains(t, w.Body.String(), `"serviceName":"Facial Treatment"`)
}

func TestHandle_InternalError(t *testing.T) {
	w := serve(NewHandler(&stubService{err: errors.New("boom")}, logger.Nop()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
