package get_available_slots

import (
	"context"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

// AppointmentRepository интерфейс реестра записей
type AppointmentRepository interface {
	// ListByFilter возвращает записи, подходящие под фильтр
	ListByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
