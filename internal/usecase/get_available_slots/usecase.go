package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SpaBookingService/pkg/ptr"
)

// UseCase use case для расчета слотов услуги на день
type UseCase struct {
	catalogRepo     CatalogRepository
	appointmentRepo AppointmentRepository
	schedule        domain.SlotSchedule
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	appointmentRepo AppointmentRepository,
	schedule domain.SlotSchedule,
	logger Logger,
) (*UseCase, error) {
	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("get_available_slots: invalid schedule: %w", err)
	}

	return &UseCase{
		catalogRepo:     catalogRepo,
		appointmentRepo: appointmentRepo,
		schedule:        schedule,
		logger:          logger,
	}, nil
}

// Execute возвращает все метки сетки на дату с признаком доступности
// Чистое чтение, блокировки слотов не берутся
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := domain.NormalizeDate(req.Date)
	uc.logger.Info("GetAvailableSlots: service=%s, date=%s", req.ServiceID, date.Format(domain.DateFormat))

	// 2. Получаем услугу
	service, err := uc.catalogRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Генерируем метки сетки
	labels, err := uc.schedule.Labels()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate labels: %v", err)
		return nil, fmt.Errorf("%w: failed to generate labels: %v", ErrInternal, err)
	}

	// 4. Получаем записи на эту услугу и дату
	appointments, err := uc.appointmentRepo.ListByFilter(ctx, domain.AppointmentsFilter{
		Date:      ptr.Ptr(date),
		ServiceID: ptr.Ptr(service.ID),
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	// 5. Помечаем занятые метки
	slots := markAvailability(labels, appointments)

	uc.logger.Info("GetAvailableSlots: generated %d slots for service=%s, date=%s",
		len(slots), service.ID, date.Format(domain.DateFormat))

	return &Response{
		Service: service,
		Date:    date,
		Slots:   slots,
	}, nil
}
