package create_booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/lock"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-SpaBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

var (
	testDay  = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

type fixedTimeProvider struct{ now time.Time }

func (p fixedTimeProvider) Now() time.Time { return p.now }

type countingMetrics struct {
	created   int32
	conflicts int32
	lockWaits int32
}

func (m *countingMetrics) IncBookingCreated(string)          { atomic.AddInt32(&m.created, 1) }
func (m *countingMetrics) IncBookingConflict(string)         { atomic.AddInt32(&m.conflicts, 1) }
func (m *countingMetrics) ObserveSlotLockWait(time.Duration) { atomic.AddInt32(&m.lockWaits, 1) }

// noopLocker не блокирует, проверяет уникальность на уровне хранилища
type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (lock.UnlockFunc, error) {
	return func() {}, nil
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (lock.UnlockFunc, error) {
	return nil, lock.ErrLockBackend
}

type fixture struct {
	uc        *UseCase
	ledger    *appointment.MemoryRepository
	catalog   *catalog.MemoryRepository
	customers *customer.MemoryRepository
	metrics   *countingMetrics
}

func newFixture(t *testing.T, locker SlotLocker, requireKnownCustomer bool) *fixture {
	t.Helper()

	catalogRepo, err := catalog.NewMemoryRepository(domain.DefaultCatalog())
	require.NoError(t, err)

	customers := customer.NewMemoryRepository()
	_, err = customers.Create(context.Background(), &domain.Customer{
		ID:        "cust-1",
		Email:     "jane@example.com",
		Name:      "Jane Doe",
		Phone:     "5551234567",
		CreatedAt: fixedNow,
	})
	require.NoError(t, err)

	ledger := appointment.NewMemoryRepository()
	m := &countingMetrics{}

	uc, err := NewUseCase(
		catalogRepo,
		customers,
		ledger,
		txmanager.NewPassthrough(),
		locker,
		m,
		Config{Schedule: domain.DefaultSlotSchedule(), RequireKnownCustomer: requireKnownCustomer},
		logger.Nop(),
	)
	require.NoError(t, err)
	uc.timeProvider = fixedTimeProvider{now: fixedNow}

	return &fixture{uc: uc, ledger: ledger, catalog: catalogRepo, customers: customers, metrics: m}
}

func bookReq(serviceID string, at types.TimeString) *Request {
	return &Request{CustomerID: "cust-1", ServiceID: serviceID, Date: testDay, Time: at}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker(), true)

	resp, err := f.uc.Execute(context.Background(), &Request{
		CustomerID: " cust-1 ",
		ServiceID:  "1",
		Date:       testDay.Add(13 * time.Hour),
		Time:       "9:00",
	})
	require.NoError(t, err)

	appt := resp.Appointment
	_, parseErr := uuid.Parse(appt.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "cust-1", appt.CustomerID)
	assert.Equal(t, "1", appt.ServiceID)
	assert.Equal(t, testDay, appt.Date)
	assert.Equal(t, types.TimeString("09:00"), appt.Time)
	assert.Equal(t, domain.StatusConfirmed, appt.Status)
	assert.Equal(t, fixedNow, appt.CreatedAt)
	assert.Nil(t, appt.CancelledAt)
	assert.Equal(t, "Swedish Massage", resp.Service.Name)

	assert.Equal(t, 1, f.ledger.Len())
	assert.Equal(t, int32(1), f.metrics.created)
	assert.Equal(t, int32(1), f.metrics.lockWaits)
}

func TestExecute_SequentialConflict(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker(), true)
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, bookReq("1", "09:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, bookReq("1", "09:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1, f.ledger.Len())
	assert.Equal(t, int32(1), f.metrics.conflicts)

	// Другая услуга и другое время не конфликтуют
	_, err = f.uc.Execute(ctx, bookReq("2", "09:00"))
	assert.NoError(t, err)
	_, err = f.uc.Execute(ctx, bookReq("1", "09:30"))
	assert.NoError(t, err)

	// После отмены слот снова доступен
	_, err = f.ledger.Cancel(ctx, first.Appointment.ID, fixedNow)
	require.NoError(t, err)
	_, err = f.uc.Execute(ctx, bookReq("1", "09:00"))
	assert.NoError(t, err)
	assert.Equal(t, 4, f.ledger.Len())
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	lockers := map[string]SlotLocker{
		"local lock": lock.NewLocalLocker(),
		"store only": noopLocker{},
	}

	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, locker, true)

			const workers = 25
			var (
				wg        sync.WaitGroup
				succeeded int32
				conflicts int32
				start     = make(chan struct{})
			)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := f.uc.Execute(context.Background(), bookReq("1", "14:00"))
					switch {
					case err == nil:
						atomic.AddInt32(&succeeded, 1)
					case errors.Is(err, ErrSlotNotAvailable):
						atomic.AddInt32(&conflicts, 1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			close(start)
			wg.Wait()

			assert.Equal(t, int32(1), succeeded)
			assert.Equal(t, int32(workers-1), conflicts)
			assert.Equal(t, 1, f.ledger.Len())
			assert.Equal(t, int32(1), f.metrics.created)
		})
	}
}

func TestExecute_UnknownServiceLeavesLedgerUnchanged(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker(), true)

	_, err := f.uc.Execute(context.Background(), bookReq("999", "09:00"))
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Equal(t, 0, f.ledger.Len())
}

func TestExecute_CustomerValidation(t *testing.T) {
	req := &Request{CustomerID: "ghost", ServiceID: "1", Date: testDay, Time: "09:00"}

	strict := newFixture(t, lock.NewLocalLocker(), true)
	_, err := strict.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.Equal(t, 0, strict.ledger.Len())

	lenient := newFixture(t, lock.NewLocalLocker(), false)
	resp, err := lenient.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ghost", resp.Appointment.CustomerID)
}

func TestExecute_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "nil request", req: nil, wantErr: ErrInvalidInput},
		{name: "missing customer", req: &Request{ServiceID: "1", Date: testDay, Time: "09:00"}, wantErr: ErrInvalidInput},
		{name: "blank customer", req: &Request{CustomerID: "  ", ServiceID: "1", Date: testDay, Time: "09:00"}, wantErr: ErrInvalidInput},
		{name: "missing service", req: &Request{CustomerID: "cust-1", Date: testDay, Time: "09:00"}, wantErr: ErrInvalidInput},
		{name: "missing date", req: &Request{CustomerID: "cust-1", ServiceID: "1", Time: "09:00"}, wantErr: ErrInvalidInput},
		{name: "missing time", req: &Request{CustomerID: "cust-1", ServiceID: "1", Date: testDay}, wantErr: ErrInvalidInput},
		{name: "malformed time", req: bookReq("1", "25:00"), wantErr: ErrInvalidTimeFormat},
		{name: "malformed time is invalid input", req: bookReq("1", "9h"), wantErr: ErrInvalidInput},
		{name: "off grid time", req: bookReq("1", "09:15"), wantErr: ErrInvalidTimeSlot},
		{name: "closing time", req: bookReq("1", "18:00"), wantErr: ErrInvalidTimeSlot},
		{name: "before opening", req: bookReq("1", "08:30"), wantErr: ErrInvalidTimeSlot},
	}

	f := newFixture(t, lock.NewLocalLocker(), true)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.uc.Execute(context.Background(), tt.req)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, f.ledger.Len())
}

func TestExecute_LockFailure(t *testing.T) {
	f := newFixture(t, failingLocker{}, true)

	_, err := f.uc.Execute(context.Background(), bookReq("1", "09:00"))
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 0, f.ledger.Len())
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker(), true)
	ctx := context.Background()

	slotsUC, err := get_available_slots.NewUseCase(f.catalog, f.ledger, domain.DefaultSlotSchedule(), logger.Nop())
	require.NoError(t, err)

	availability := func() map[types.TimeString]bool {
		resp, err := slotsUC.Execute(ctx, &get_available_slots.Request{ServiceID: "1", Date: testDay})
		require.NoError(t, err)
		require.Len(t, resp.Slots, 18)
		result := make(map[types.TimeString]bool, len(resp.Slots))
		for _, s := range resp.Slots {
			result[s.Time] = s.Available
		}
		return result
	}

	for label, available := range availability() {
		assert.True(t, available, label)
	}

	booked, err := f.uc.Execute(ctx, bookReq("1", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, booked.Appointment.Status)
	assert.False(t, availability()["09:00"])

	_, err = f.uc.Execute(ctx, bookReq("1", "09:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	_, err = f.ledger.Cancel(ctx, booked.Appointment.ID, fixedNow)
	require.NoError(t, err)
	assert.True(t, availability()["09:00"])
}
