package customer

import (
	"context"
	"strings"
	"sync"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// MemoryRepository справочник клиентов в памяти
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Customer
	byEmail map[string]string // email в нижнем регистре -> ID
}

// NewMemoryRepository создает пустой справочник
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]domain.Customer),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
	stored := *c
	stored.Email = strings.ToLower(c.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[stored.Email]; taken {
		return nil, ErrEmailTaken
	}

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID

	return &stored, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	c := r.byID[id]
	return &c, nil
}

func (r *MemoryRepository) GetByIDs(_ context.Context, ids []string) (map[string]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*domain.Customer, len(ids))
	for _, id := range ids {
		c, ok := r.byID[id]
		if !ok {
			continue
		}
		result[id] = &c
	}
	return result, nil
}
