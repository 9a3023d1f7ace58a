package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	CustomerID string           // ID клиента
	ServiceID  string           // ID услуги
	Date       time.Time        // Дата записи (время суток игнорируется)
	Time       types.TimeString // Метка слота, например "10:00"
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment *domain.Appointment
	Service     *domain.Service
}

// Config параметры бронирования
type Config struct {
	Schedule domain.SlotSchedule

	// RequireKnownCustomer включает проверку customerId по справочнику клиентов
	RequireKnownCustomer bool
}
