package create_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*createBooking.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func doRequest(h *Handler, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

const validBody = `{"customerId":"cust-1","serviceId":"1","date":"2025-06-10","time":"09:00"}`

func TestHandle_Created(t *testing.T) {
	uc := new(mockUseCase)
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, &createBooking.Request{
		CustomerID: "cust-1",
		ServiceID:  "1",
		Date:       time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Time:       "09:00",
	}).Return(&createBooking.Response{
		Appointment: &domain.Appointment{
			ID:         "appt-1",
			CustomerID: "cust-1",
			ServiceID:  "1",
			Date:       time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Time:       "09:00",
			Status:     domain.StatusConfirmed,
			CreatedAt:  createdAt,
		},
		Service: &domain.Service{ID: "1", Name: "Swedish Massage", DurationMinutes: 60, Price: 89.99},
	}, nil)

	w := doRequest(NewHandler(uc, logger.Nop()), validBody)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "appt-1", resp.Appointment.ID)
	assert.Equal(t, "2025-06-10", resp.Appointment.Date)
	assert.Equal(t, "confirmed", resp.Appointment.Status)
	assert.Equal(t, "Swedish Massage", resp.Service.Name)
	uc.AssertExpectations(t)
}

func TestHandle_BadRequestBeforeUseCase(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed json", body: `{`, wantMsg: msgInvalidRequestBody},
		{name: "missing time", body: `{"customerId":"cust-1","serviceId":"1","date":"2025-06-10"}`, wantMsg: msgMissingFields},
		{name: "missing customer", body: `{"serviceId":"1","date":"2025-06-10","time":"09:00"}`, wantMsg: msgMissingFields},
		{name: "bad date", body: `{"customerId":"cust-1","serviceId":"1","date":"10.06.2025","time":"09:00"}`, wantMsg: msgInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockUseCase)
			w := doRequest(NewHandler(uc, logger.Nop()), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantMsg+`"}`, w.Body.String())
			uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_UseCaseErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "conflict", err: createBooking.ErrSlotNotAvailable, wantStatus: http.StatusConflict, wantMsg: msgSlotNotAvailable},
		{name: "unknown service", err: createBooking.ErrServiceNotFound, wantStatus: http.StatusNotFound, wantMsg: msgServiceNotFound},
		{name: "unknown customer", err: createBooking.ErrCustomerNotFound, wantStatus: http.StatusNotFound, wantMsg: msgCustomerNotFound},
		{name: "off grid", err: createBooking.ErrInvalidTimeSlot, wantStatus: http.StatusBadRequest, wantMsg: msgInvalidTimeSlot},
		{name: "bad time format", err: fmt.Errorf("%w: %w: hour out of range", createBooking.ErrInvalidInput, createBooking.ErrInvalidTimeFormat), wantStatus: http.StatusBadRequest, wantMsg: msgInvalidTime},
		{name: "other invalid input", err: fmt.Errorf("%w: customerId is required", createBooking.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantMsg: msgInvalidInput},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockUseCase)
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(NewHandler(uc, logger.Nop()), validBody)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantMsg+`"}`, w.Body.String())
		})
	}
}
