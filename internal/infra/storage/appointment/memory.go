package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// MemoryRepository in-memory реестр записей
// Проверка уникальности активного слота и вставка выполняются под одной блокировкой
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Appointment
	order  []string
	active map[domain.SlotKey]string // слот -> ID активной записи
}

// NewMemoryRepository создает пустой in-memory реестр
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*domain.Appointment),
		order:  make([]string, 0),
		active: make(map[domain.SlotKey]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	stored := *appt
	stored.Date = domain.NormalizeDate(appt.Date)
	key := stored.SlotKey()

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored.IsActive() {
		if _, taken := r.active[key]; taken {
			return nil, ErrSlotNotAvailable
		}
		r.active[key] = stored.ID
	}

	r.byID[stored.ID] = &stored
	r.order = append(r.order, stored.ID)

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *appt
	return &out, nil
}

func (r *MemoryRepository) ExistsActive(_ context.Context, key domain.SlotKey) (bool, error) {
	key = domain.NewSlotKey(key.ServiceID, key.Date, key.Time)

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.active[key]
	return taken, nil
}

func (r *MemoryRepository) ListByFilter(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, id := range r.order {
		appt := r.byID[id]
		if !filter.Matches(appt) {
			continue
		}
		out := *appt
		result = append(result, &out)
	}

	// order уже упорядочен по моменту вставки, stable sort сохраняет его внутри слота
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Time.IsBefore(result[j].Time)
	})

	return result, nil
}

func (r *MemoryRepository) Cancel(_ context.Context, id string, cancelledAt time.Time) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	// Повторная отмена ничего не меняет, CancelledAt остается прежним
	if appt.Status == domain.StatusCancelled {
		out := *appt
		return &out, nil
	}
	if !appt.CanBeCancelled() {
		return nil, ErrCannotCancel
	}

	appt.Status = domain.StatusCancelled
	appt.CancelledAt = &cancelledAt

	key := appt.SlotKey()
	if r.active[key] == appt.ID {
		delete(r.active, key)
	}

	out := *appt
	return &out, nil
}

// Len количество записей в реестре
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
