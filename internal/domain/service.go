package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidService возвращается при нарушении инвариантов услуги
var ErrInvalidService = errors.New("invalid service")

// Service услуга каталога (массаж, уход и т.д.)
type Service struct {
	ID              string
	Name            string
	Description     string
	DurationMinutes int
	Price           float64
}

// Validate проверяет инварианты услуги
func (s *Service) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidService)
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidService, s.DurationMinutes)
	}
	if s.Price < 0 {
		return fmt.Errorf("%w: price must not be negative, got %.2f", ErrInvalidService, s.Price)
	}
	return nil
}

// DefaultCatalog стартовый каталог услуг
func DefaultCatalog() []Service {
	return []Service{
		{
			ID:              "1",
			Name:            "Swedish Massage",
			Description:     "Relaxing full-body massage to relieve stress and tension",
			DurationMinutes: 60,
			Price:           89.99,
		},
		{
			ID:              "2",
			Name:            "Deep Tissue Massage",
			Description:     "Therapeutic massage targeting deep muscle knots",
			DurationMinutes: 60,
			Price:           99.99,
		},
		{
			ID:              "3",
			Name:            "Facial Treatment",
			Description:     "Rejuvenating facial with premium skincare products",
			DurationMinutes: 45,
			Price:           79.99,
		},
		{
			ID:              "4",
			Name:            "Hot Stone Therapy",
			Description:     "Luxurious massage using heated basalt stones",
			DurationMinutes: 75,
			Price:           119.99,
		},
		{
			ID:              "5",
			Name:            "Aromatherapy Treatment",
			Description:     "Healing session with essential oils and relaxation",
			DurationMinutes: 50,
			Price:           69.99,
		},
		{
			ID:              "6",
			Name:            "Full Body Scrub",
			Description:     "Exfoliating treatment for soft, glowing skin",
			DurationMinutes: 45,
			Price:           59.99,
		},
	}
}
