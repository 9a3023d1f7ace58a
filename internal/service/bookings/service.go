package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SpaBookingService/pkg/ptr"
)

// Service сервис для работы с записями
type Service struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	customerRepo    CustomerRepository
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	customerRepo CustomerRepository,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		customerRepo:    customerRepo,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID вместе с услугой
// Если услуги уже нет в каталоге, Service в ответе пустой
func (s *Service) GetByID(ctx context.Context, id string) (*models.AppointmentDetailsResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s", id)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	service, err := s.catalogRepo.GetByID(ctx, appt.ServiceID)
	if err != nil && !errors.Is(err, catalogRepo.ErrServiceNotFound) {
		s.logger.Error("GetByID: failed to get service id=%s: %v", appt.ServiceID, err)
		return nil, fmt.Errorf("%w: GetByID - catalog error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentDetails(appt, service), nil
}

// Cancel отменяет запись
// Отменить можно только confirmed, повторная отмена успешна и ничего не меняет
// completed отменить нельзя (ErrCannotCancel)
func (s *Service) Cancel(ctx context.Context, id string) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%s", id)

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: appointmentId is required", ErrInvalidInput)
	}

	// Точность timestamptz в PostgreSQL - микросекунды
	now := s.timeProvider.Now().UTC().Truncate(time.Microsecond)

	cancelled, err := s.appointmentRepo.Cancel(ctx, id, now)
	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("Cancel: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		case errors.Is(err, appointmentRepo.ErrCannotCancel):
			s.logger.Warn("Cancel: appointment id=%s cannot be cancelled", id)
			return nil, ErrCannotCancel
		default:
			s.logger.Error("Cancel: repository error for appointment id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
	}

	// Для уже отмененной записи хранится прежний момент отмены
	if cancelled.CancelledAt != nil && cancelled.CancelledAt.Equal(now) {
		s.metrics.IncBookingCancelled()
		s.logger.Info("Cancel: successfully cancelled appointment id=%s", id)
	} else {
		s.logger.Info("Cancel: appointment id=%s was already cancelled", id)
	}

	return &models.CancelResponse{
		ID:     cancelled.ID,
		Status: string(cancelled.Status),
	}, nil
}

// ListAppointments возвращает записи с данными клиента и услуги
// Неизвестные клиент и услуга выводятся как "Unknown", цена 0
func (s *Service) ListAppointments(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListAppointments: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	logMsg := "ListAppointments: fetching appointments"
	if filter.Date != nil {
		logMsg += fmt.Sprintf(", date=%s", filter.Date.Format(domain.DateFormat))
	}
	if filter.ServiceID != nil {
		logMsg += fmt.Sprintf(", service=%s", *filter.ServiceID)
	}
	if filter.CustomerID != nil {
		logMsg += fmt.Sprintf(", customer=%s", *filter.CustomerID)
	}
	s.logger.Info(logMsg)

	appointments, err := s.appointmentRepo.ListByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListAppointments: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListAppointments - repository error: %v", ErrInternal, err)
	}

	enriched, err := s.enrich(ctx, appointments)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ListAppointments: successfully fetched %d appointments", len(enriched))
	return &models.AppointmentListResponse{Appointments: enriched}, nil
}

// GetCustomerAppointments история записей клиента
func (s *Service) GetCustomerAppointments(ctx context.Context, customerID string) (*models.AppointmentListResponse, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}
	return s.ListAppointments(ctx, &models.ListAppointmentsRequest{CustomerID: ptr.Ptr(customerID)})
}

// Вспомогательные методы

// enrich подставляет имя и email клиента, название и цену услуги
func (s *Service) enrich(ctx context.Context, appointments []*domain.Appointment) ([]models.EnrichedAppointmentResponse, error) {
	if len(appointments) == 0 {
		return []models.EnrichedAppointmentResponse{}, nil
	}

	services, err := s.catalogRepo.List(ctx)
	if err != nil {
		s.logger.Error("enrich: failed to list services: %v", err)
		return nil, fmt.Errorf("%w: enrich - catalog error: %v", ErrInternal, err)
	}
	servicesByID := make(map[string]*domain.Service, len(services))
	for _, svc := range services {
		servicesByID[svc.ID] = svc
	}

	customerIDs := make([]string, 0, len(appointments))
	seen := make(map[string]struct{}, len(appointments))
	for _, appt := range appointments {
		if _, ok := seen[appt.CustomerID]; ok {
			continue
		}
		seen[appt.CustomerID] = struct{}{}
		customerIDs = append(customerIDs, appt.CustomerID)
	}

	customers, err := s.customerRepo.GetByIDs(ctx, customerIDs)
	if err != nil {
		s.logger.Error("enrich: failed to get customers: %v", err)
		return nil, fmt.Errorf("%w: enrich - directory error: %v", ErrInternal, err)
	}

	result := make([]models.EnrichedAppointmentResponse, 0, len(appointments))
	for _, appt := range appointments {
		result = append(result, models.FromDomainEnriched(appt, customers[appt.CustomerID], servicesByID[appt.ServiceID]))
	}

	return result, nil
}
