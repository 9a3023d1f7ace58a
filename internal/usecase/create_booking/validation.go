package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса и нормализует поля
func validateRequest(req *Request) (*Request, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	normalized := Request{
		CustomerID: strings.TrimSpace(req.CustomerID),
		ServiceID:  strings.TrimSpace(req.ServiceID),
		Date:       req.Date,
	}

	if normalized.CustomerID == "" {
		return nil, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}

	if normalized.ServiceID == "" {
		return nil, fmt.Errorf("%w: serviceId is required", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	normalized.Date = domain.NormalizeDate(req.Date)

	// Проверяем, что время указано
	if req.Time.IsZero() {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidInput)
	}

	// Валидируем формат времени ("9:30" -> "09:30")
	t, err := types.NewTimeStringFromString(req.Time.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrInvalidInput, ErrInvalidTimeFormat, err)
	}
	normalized.Time = t

	return &normalized, nil
}

// validateTimeSlot проверяет, что время совпадает с меткой сетки
func validateTimeSlot(schedule domain.SlotSchedule, t types.TimeString) error {
	if !schedule.Contains(t) {
		return fmt.Errorf("%w: %s is not a slot between %s and %s every %d minutes",
			ErrInvalidTimeSlot, t, schedule.OpenTime, schedule.CloseTime, schedule.SlotDurationMinutes)
	}
	return nil
}
