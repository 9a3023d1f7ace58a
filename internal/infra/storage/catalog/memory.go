package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// MemoryRepository каталог услуг в памяти
// Каталог только для чтения, наполняется при создании
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]domain.Service
	order []string
}

// NewMemoryRepository создает каталог из списка услуг
// Порядок List совпадает с порядком services
func NewMemoryRepository(services []domain.Service) (*MemoryRepository, error) {
	r := &MemoryRepository{
		byID:  make(map[string]domain.Service, len(services)),
		order: make([]string, 0, len(services)),
	}

	for i := range services {
		s := services[i]
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: service #%d: %w", i, err)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate service id %q", s.ID)
		}
		r.byID[s.ID] = s
		r.order = append(r.order, s.ID)
	}

	return r, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]*domain.Service, 0, len(r.order))
	for _, id := range r.order {
		s := r.byID[id]
		services = append(services, &s)
	}
	return services, nil
}
