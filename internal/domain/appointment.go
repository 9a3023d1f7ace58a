package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

// AppointmentStatus статус записи
type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment запись клиента на процедуру
type Appointment struct {
	ID         string
	CustomerID string
	ServiceID  string
	Date       time.Time // только календарная дата, см. NormalizeDate
	Time       types.TimeString
	Status     AppointmentStatus

	CreatedAt   time.Time
	CancelledAt *time.Time
}

// IsActive возвращает true, если запись занимает слот
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// CanBeCancelled возвращает true, если запись можно отменить
// completed и cancelled терминальны
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusConfirmed
}

// SlotKey ключ занимаемого слота
func (a *Appointment) SlotKey() SlotKey {
	return NewSlotKey(a.ServiceID, a.Date, a.Time)
}

// SlotKey идентифицирует слот: услуга + дата + время
type SlotKey struct {
	ServiceID string
	Date      time.Time
	Time      types.TimeString
}

// NewSlotKey создает ключ слота с нормализованной датой
func NewSlotKey(serviceID string, date time.Time, t types.TimeString) SlotKey {
	return SlotKey{ServiceID: serviceID, Date: NormalizeDate(date), Time: t}
}

// String строковое представление ключа, используется для блокировок
func (k SlotKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.ServiceID, k.Date.Format(DateFormat), k.Time)
}

// NormalizeDate отбрасывает время суток, оставляя календарную дату в UTC
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsSameDay сравнивает даты только по календарному дню
func IsSameDay(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}

// ParseStatus конвертирует строку в AppointmentStatus с валидацией
func ParseStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	switch status {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

// AppointmentsFilter фильтр выборки записей, все поля опциональны
type AppointmentsFilter struct {
	Date       *time.Time
	ServiceID  *string
	CustomerID *string
	Status     *AppointmentStatus
}

// Matches проверяет запись на соответствие фильтру
func (f AppointmentsFilter) Matches(a *Appointment) bool {
	if f.Date != nil && !IsSameDay(*f.Date, a.Date) {
		return false
	}
	if f.ServiceID != nil && *f.ServiceID != a.ServiceID {
		return false
	}
	if f.CustomerID != nil && *f.CustomerID != a.CustomerID {
		return false
	}
	if f.Status != nil && *f.Status != a.Status {
		return false
	}
	return true
}
