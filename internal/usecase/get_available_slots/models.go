package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// Request модель запроса на получение слотов
type Request struct {
	ServiceID string    // ID услуги
	Date      time.Time // Дата (время суток игнорируется)
}

// Response модель ответа со слотами дня
type Response struct {
	Service *domain.Service   // Услуга, для которой считались слоты
	Date    time.Time         // Нормализованная дата
	Slots   []domain.TimeSlot // Все метки сетки по возрастанию
}
