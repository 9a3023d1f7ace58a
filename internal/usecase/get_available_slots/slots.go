package get_available_slots

import (
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// markAvailability помечает метки, занятые активными записями
// Слот занят, только если активная запись начинается ровно в эту метку
func markAvailability(labels []types.TimeString, appointments []*domain.Appointment) []domain.TimeSlot {
	occupied := make(map[types.TimeString]struct{}, len(appointments))
	for _, appt := range appointments {
		if !appt.IsActive() {
			continue
		}
		occupied[appt.Time] = struct{}{}
	}

	slots := make([]domain.TimeSlot, len(labels))
	for i, label := range labels {
		_, taken := occupied[label]
		slots[i] = domain.TimeSlot{
			Time:      label,
			Available: !taken,
		}
	}

	return slots
}
