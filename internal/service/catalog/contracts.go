package catalog

import (
	"context"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	List(ctx context.Context) ([]*domain.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
