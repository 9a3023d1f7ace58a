package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/lock"
)

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

// CustomerRepository интерфейс справочника клиентов
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

// AppointmentRepository интерфейс реестра записей
type AppointmentRepository interface {
	// ExistsActive проверяет, занят ли слот активной записью
	ExistsActive(ctx context.Context, key domain.SlotKey) (bool, error)
	// Create сохраняет запись, отклоняя дубликат активного слота
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotLocker интерфейс блокировки слота по ключу
type SlotLocker interface {
	Lock(ctx context.Context, key string) (lock.UnlockFunc, error)
}

// Metrics интерфейс метрик бронирования
type Metrics interface {
	IncBookingCreated(serviceID string)
	IncBookingConflict(serviceID string)
	ObserveSlotLockWait(d time.Duration)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
