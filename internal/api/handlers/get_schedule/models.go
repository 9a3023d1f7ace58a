package get_schedule

import (
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// ScheduleResponse HTTP response model
type ScheduleResponse struct {
	OpenTime            string   `json:"openTime"`
	CloseTime           string   `json:"closeTime"`
	SlotDurationMinutes int      `json:"slotDurationMinutes"`
	Slots               []string `json:"slots"`
}

// FromDomainSchedule конвертирует сетку слотов в HTTP response
func FromDomainSchedule(s domain.SlotSchedule) (*ScheduleResponse, error) {
	labels, err := s.Labels()
	if err != nil {
		return nil, err
	}

	slots := make([]string, len(labels))
	for i, label := range labels {
		slots[i] = label.String()
	}

	return &ScheduleResponse{
		OpenTime:            s.OpenTime.String(),
		CloseTime:           s.CloseTime.String(),
		SlotDurationMinutes: s.SlotDurationMinutes,
		Slots:               slots,
	}, nil
}
