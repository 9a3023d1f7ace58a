package create_booking

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	catalogModels "github.com/m04kA/SMC-SpaBookingService/internal/service/catalog/models"
	createBooking "github.com/m04kA/SMC-SpaBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

var (
	errMissingFields = errors.New("missing required fields")
	errInvalidDate   = errors.New("invalid date")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	CustomerID string `json:"customerId"`
	ServiceID  string `json:"serviceId"`
	Date       string `json:"date"` // "2025-06-10"
	Time       string `json:"time"` // "09:00"
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	ServiceID  string `json:"serviceId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	Success     bool                           `json:"success"`
	Appointment AppointmentResponse            `json:"appointment"`
	Service     *catalogModels.ServiceResponse `json:"service"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Формат времени проверяет use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	if strings.TrimSpace(r.CustomerID) == "" || strings.TrimSpace(r.ServiceID) == "" ||
		strings.TrimSpace(r.Date) == "" || strings.TrimSpace(r.Time) == "" {
		return nil, errMissingFields
	}

	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(r.Date))
	if err != nil {
		return nil, errInvalidDate
	}

	return &createBooking.Request{
		CustomerID: r.CustomerID,
		ServiceID:  r.ServiceID,
		Date:       date,
		Time:       types.TimeString(strings.TrimSpace(r.Time)),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	a := resp.Appointment
	return &CreateBookingResponse{
		Success: true,
		Appointment: AppointmentResponse{
			ID:         a.ID,
			CustomerID: a.CustomerID,
			ServiceID:  a.ServiceID,
			Date:       a.Date.Format(domain.DateFormat),
			Time:       a.Time.String(),
			Status:     string(a.Status),
			CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		},
		Service: catalogModels.FromDomainService(resp.Service),
	}
}
