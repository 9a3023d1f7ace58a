package domain

// Расписание по умолчанию
const (
	DefaultOpenTime            = "09:00"
	DefaultCloseTime           = "18:00"
	DefaultSlotDurationMinutes = 30
)

// Ограничения сетки слотов
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 hours
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// UnknownLabel подставляется при обогащении записей, если клиент или услуга не найдены
const UnknownLabel = "Unknown"
