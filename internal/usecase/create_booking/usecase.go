package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/customer"
)

// UseCase use case для создания записи
type UseCase struct {
	catalogRepo     CatalogRepository
	customerRepo    CustomerRepository
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	locker          SlotLocker
	metrics         Metrics
	config          Config
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	customerRepo CustomerRepository,
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	locker SlotLocker,
	metrics Metrics,
	config Config,
	logger Logger,
) (*UseCase, error) {
	if err := config.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("create_booking: invalid schedule: %w", err)
	}

	return &UseCase{
		catalogRepo:     catalogRepo,
		customerRepo:    customerRepo,
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		locker:          locker,
		metrics:         metrics,
		config:          config,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}, nil
}

// Execute выполняет use case создания записи
// Проверка слота и вставка выполняются под блокировкой слота в сериализуемой транзакции,
// из конкурентных запросов на один слот успешен ровно один
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	req, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: customer=%s, service=%s, date=%s, time=%s",
		req.CustomerID, req.ServiceID, req.Date.Format(domain.DateFormat), req.Time)

	// 2. Проверяем, что время совпадает с меткой сетки
	if err := validateTimeSlot(uc.config.Schedule, req.Time); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	// 3. Получаем услугу
	service, err := uc.catalogRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Проверяем клиента
	if uc.config.RequireKnownCustomer {
		if _, err := uc.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
			if errors.Is(err, customerRepo.ErrCustomerNotFound) {
				uc.logger.Warn("CreateBooking: customer id=%s not found", req.CustomerID)
				return nil, ErrCustomerNotFound
			}
			uc.logger.Error("CreateBooking: failed to get customer id=%s: %v", req.CustomerID, err)
			return nil, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
		}
	}

	// 5. Берем блокировку слота
	key := domain.NewSlotKey(service.ID, req.Date, req.Time)

	lockStart := uc.timeProvider.Now()
	unlock, err := uc.locker.Lock(ctx, key.String())
	if err != nil {
		uc.logger.Error("CreateBooking: failed to lock slot %s: %v", key, err)
		return nil, fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
	}
	defer unlock()
	uc.metrics.ObserveSlotLockWait(uc.timeProvider.Now().Sub(lockStart))

	var result *domain.Appointment

	// 6. Проверяем слот и сохраняем запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Проверяем, что слот свободен (FOR UPDATE внутри транзакции)
		taken, err := uc.appointmentRepo.ExistsActive(txCtx, key)
		if err != nil {
			// %w дважды: ошибка драйвера нужна менеджеру транзакций для повтора
			return fmt.Errorf("%w: failed to check slot: %w", ErrInternal, err)
		}
		if taken {
			return ErrSlotNotAvailable
		}

		// 6.2. Создаем запись
		appt := &domain.Appointment{
			ID:         uuid.NewString(),
			CustomerID: req.CustomerID,
			ServiceID:  service.ID,
			Date:       req.Date,
			Time:       req.Time,
			Status:     domain.StatusConfirmed,
			CreatedAt:  uc.timeProvider.Now(),
		}

		// 6.3. Сохраняем, хранилище повторно проверяет уникальность слота
		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotNotAvailable) {
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.metrics.IncBookingConflict(service.ID)
			uc.logger.Warn("CreateBooking: slot %s is already booked", key)
			return nil, ErrSlotNotAvailable
		}
		uc.logger.Error("CreateBooking: failed to book slot %s: %v", key, err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.metrics.IncBookingCreated(service.ID)
	uc.logger.Info("CreateBooking: successfully created appointment id=%s", result.ID)

	return &Response{
		Appointment: result,
		Service:     service,
	}, nil
}
