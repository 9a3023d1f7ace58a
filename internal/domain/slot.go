package domain

import (
	"fmt"

	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// TimeSlot слот расписания и его доступность
type TimeSlot struct {
	Time      types.TimeString
	Available bool
}

// SlotSchedule сетка слотов рабочего дня
// Слоты начинаются с OpenTime с шагом SlotDurationMinutes, последний заканчивается не позже CloseTime
type SlotSchedule struct {
	OpenTime            types.TimeString
	CloseTime           types.TimeString
	SlotDurationMinutes int
}

// DefaultSlotSchedule 09:00-18:00 по 30 минут, 18 слотов
func DefaultSlotSchedule() SlotSchedule {
	return SlotSchedule{
		OpenTime:            DefaultOpenTime,
		CloseTime:           DefaultCloseTime,
		SlotDurationMinutes: DefaultSlotDurationMinutes,
	}
}

// Validate проверяет корректность сетки
func (s SlotSchedule) Validate() error {
	if err := s.OpenTime.Validate(); err != nil {
		return fmt.Errorf("open time: %w", err)
	}
	if err := s.CloseTime.Validate(); err != nil {
		return fmt.Errorf("close time: %w", err)
	}
	if !s.OpenTime.IsBefore(s.CloseTime) {
		return fmt.Errorf("open time %s must be before close time %s", s.OpenTime, s.CloseTime)
	}
	if s.SlotDurationMinutes < MinSlotDurationMinutes || s.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("slot duration must be within [%d, %d], got %d",
			MinSlotDurationMinutes, MaxSlotDurationMinutes, s.SlotDurationMinutes)
	}
	return nil
}

// Labels генерирует метки слотов по возрастанию
func (s SlotSchedule) Labels() ([]types.TimeString, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	labels := make([]types.TimeString, 0)
	current := s.OpenTime
	for current.IsBefore(s.CloseTime) {
		end, err := current.AddMinutes(s.SlotDurationMinutes)
		if err != nil || end.IsAfter(s.CloseTime) {
			break
		}
		labels = append(labels, current)
		current = end
	}

	return labels, nil
}

// Contains проверяет, что t является меткой слота этой сетки
func (s SlotSchedule) Contains(t types.TimeString) bool {
	labels, err := s.Labels()
	if err != nil {
		return false
	}
	for _, label := range labels {
		if label == t {
			return true
		}
	}
	return false
}
