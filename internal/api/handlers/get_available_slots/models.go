package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	catalogModels "github.com/m04kA/SMC-SpaBookingService/internal/service/catalog/models"
	getAvailableSlots "github.com/m04kA/SMC-SpaBookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ServiceID string                         `json:"serviceId"`
	Date      string                         `json:"date"`
	Service   *catalogModels.ServiceResponse `json:"service"`
	TimeSlots []TimeSlot                     `json:"timeSlots"`
}

// TimeSlot модель временного слота
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]TimeSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = TimeSlot{
			Time:      slot.Time.String(),
			Available: slot.Available,
		}
	}

	return &AvailableSlotsResponse{
		ServiceID: resp.Service.ID,
		Date:      resp.Date.Format(domain.DateFormat),
		Service:   catalogModels.FromDomainService(resp.Service),
		TimeSlots: slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров пути и query
func ToUseCaseRequest(serviceID, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		ServiceID: serviceID,
		Date:      date,
	}, nil
}
