package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	catalogModels "github.com/m04kA/SMC-SpaBookingService/internal/service/catalog/models"
)

// Request модели

// ListAppointmentsRequest фильтр выборки записей, все поля опциональны
type ListAppointmentsRequest struct {
	Date       *string `json:"date,omitempty"` // "2025-06-10"
	ServiceID  *string `json:"serviceId,omitempty"`
	CustomerID *string `json:"customerId,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
// Пустые строки считаются отсутствующим фильтром
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	var filter domain.AppointmentsFilter
	if r == nil {
		return filter, nil
	}

	if v := nonEmpty(r.Date); v != nil {
		date, err := time.Parse(domain.DateFormat, *v)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *v)
		}
		date = domain.NormalizeDate(date)
		filter.Date = &date
	}

	filter.ServiceID = nonEmpty(r.ServiceID)
	filter.CustomerID = nonEmpty(r.CustomerID)

	if v := nonEmpty(r.Status); v != nil {
		status, err := domain.ParseStatus(*v)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Response модели

// AppointmentResponse запись
type AppointmentResponse struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customerId"`
	ServiceID   string    `json:"serviceId"`
	Date        string    `json:"date"` // "2025-06-10"
	Time        string    `json:"time"` // "09:00"
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	CancelledAt *string   `json:"cancelledAt,omitempty"` // ISO 8601 format
}

// AppointmentDetailsResponse запись и услуга (страница подтверждения)
type AppointmentDetailsResponse struct {
	Appointment AppointmentResponse            `json:"appointment"`
	Service     *catalogModels.ServiceResponse `json:"service,omitempty"`
}

// EnrichedAppointmentResponse строка административного списка
type EnrichedAppointmentResponse struct {
	ID            string  `json:"id"`
	CustomerID    string  `json:"customerId"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	ServiceID     string  `json:"serviceId"`
	ServiceName   string  `json:"serviceName"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Status        string  `json:"status"`
	Price         float64 `json:"price"`
}

// AppointmentListResponse список записей
type AppointmentListResponse struct {
	Appointments []EnrichedAppointmentResponse `json:"appointments"`
}

// CancelResponse результат отмены
type CancelResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		ServiceID:  a.ServiceID,
		Date:       a.Date.Format(domain.DateFormat),
		Time:       a.Time.String(),
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentDetails конвертирует запись и услугу
func FromDomainAppointmentDetails(a *domain.Appointment, s *domain.Service) *AppointmentDetailsResponse {
	return &AppointmentDetailsResponse{
		Appointment: *FromDomainAppointment(a),
		Service:     catalogModels.FromDomainService(s),
	}
}

// FromDomainEnriched собирает строку списка, c и s могут быть nil
func FromDomainEnriched(a *domain.Appointment, c *domain.Customer, s *domain.Service) EnrichedAppointmentResponse {
	row := EnrichedAppointmentResponse{
		ID:            a.ID,
		CustomerID:    a.CustomerID,
		CustomerName:  domain.UnknownLabel,
		CustomerEmail: domain.UnknownLabel,
		ServiceID:     a.ServiceID,
		ServiceName:   domain.UnknownLabel,
		Date:          a.Date.Format(domain.DateFormat),
		Time:          a.Time.String(),
		Status:        string(a.Status),
	}

	if c != nil {
		row.CustomerName = c.Name
		row.CustomerEmail = c.Email
	}
	if s != nil {
		row.ServiceName = s.Name
		row.Price = s.Price
	}

	return row
}
