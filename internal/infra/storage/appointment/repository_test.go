package appointment

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SpaBookingService/pkg/types"
)

const selectColumns = "id, customer_id, service_id, booking_date, start_time, status, created_at, cancelled_at"

func TestInsertQuery(t *testing.T) {
	appt := newAppointment("a1", "1", testDay.Add(15*time.Hour), "09:00")

	query, args, err := insertQuery(appt).ToSql()

	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO appointments (id,customer_id,service_id,booking_date,start_time,status,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)",
		query)
	require.Len(t, args, 7)
	assert.Equal(t, "a1", args[0])
	assert.Equal(t, "cust-1", args[1])
	assert.Equal(t, "1", args[2])
	// Время суток отбрасывается
	assert.Equal(t, testDay, args[3])
	assert.Equal(t, types.TimeString("09:00"), args[4])
	assert.Equal(t, domain.StatusConfirmed, args[5])
}

func TestGetByIDQuery(t *testing.T) {
	query, args, err := getByIDQuery("a1").ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT "+selectColumns+" FROM appointments WHERE id = $1", query)
	assert.Equal(t, []interface{}{"a1"}, args)
}

func TestExistsActiveQuery(t *testing.T) {
	key := domain.NewSlotKey("1", testDay, "09:00")

	tests := []struct {
		name      string
		forUpdate bool
		wantQuery string
	}{
		{
			name:      "outside transaction",
			forUpdate: false,
			wantQuery: "SELECT id FROM appointments WHERE booking_date = $1 AND service_id = $2 AND start_time = $3 AND status <> $4 LIMIT 1",
		},
		{
			name:      "inside transaction locks rows",
			forUpdate: true,
			wantQuery: "SELECT id FROM appointments WHERE booking_date = $1 AND service_id = $2 AND start_time = $3 AND status <> $4 LIMIT 1 FOR UPDATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := existsActiveQuery(key, tt.forUpdate).ToSql()

			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			// TimeString реализует driver.Valuer, squirrel подставляет строку
			assert.Equal(t, []interface{}{testDay, "1", "09:00", domain.StatusCancelled}, args)
		})
	}
}

func TestListByFilterQuery(t *testing.T) {
	const orderBy = " ORDER BY booking_date ASC, start_time ASC, created_at ASC"

	tests := []struct {
		name      string
		filter    domain.AppointmentsFilter
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "no filter",
			filter:    domain.AppointmentsFilter{},
			wantQuery: "SELECT " + selectColumns + " FROM appointments" + orderBy,
		},
		{
			name: "date and service",
			filter: domain.AppointmentsFilter{
				Date:      ptr.Ptr(testDay.Add(10 * time.Hour)),
				ServiceID: ptr.Ptr("2"),
			},
			wantQuery: "SELECT " + selectColumns + " FROM appointments WHERE booking_date = $1 AND service_id = $2" + orderBy,
			wantArgs:  []interface{}{testDay, "2"},
		},
		{
			name: "customer and status",
			filter: domain.AppointmentsFilter{
				CustomerID: ptr.Ptr("cust-1"),
				Status:     ptr.Ptr(domain.StatusCancelled),
			},
			wantQuery: "SELECT " + selectColumns + " FROM appointments WHERE customer_id = $1 AND status = $2" + orderBy,
			wantArgs:  []interface{}{"cust-1", domain.StatusCancelled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listByFilterQuery(tt.filter).ToSql()

			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestCancelQuery(t *testing.T) {
	cancelledAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	query, args, err := cancelQuery("a1", cancelledAt).ToSql()

	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE appointments SET status = $1, cancelled_at = $2 WHERE id = $3 AND status = $4 RETURNING "+selectColumns,
		query)
	assert.Equal(t, []interface{}{domain.StatusCancelled, cancelledAt, "a1", domain.StatusConfirmed}, args)
}

func TestIsActiveSlotViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unique violation on active slot index",
			err:  &pq.Error{Code: "23505", Constraint: "appointments_active_slot_uidx"},
			want: true,
		},
		{
			name: "wrapped violation",
			err:  fmt.Errorf("exec: %w", &pq.Error{Code: "23505", Constraint: "appointments_active_slot_uidx"}),
			want: true,
		},
		{
			name: "unique violation on primary key",
			err:  &pq.Error{Code: "23505", Constraint: "appointments_pkey"},
			want: false,
		},
		{
			name: "other postgres error",
			err:  &pq.Error{Code: "40001", Constraint: "appointments_active_slot_uidx"},
			want: false,
		},
		{
			name: "not a postgres error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isActiveSlotViolation(tt.err))
		})
	}
}

func TestResolveCancelMiss(t *testing.T) {
	cancelledAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("not found", func(t *testing.T) {
		_, err := resolveCancelMiss(nil, ErrAppointmentNotFound)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("lookup failure is passed through", func(t *testing.T) {
		lookupErr := fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, sql.ErrConnDone)
		_, err := resolveCancelMiss(nil, lookupErr)
		assert.ErrorIs(t, err, ErrScanRow)
	})

	t.Run("already cancelled returns stored record", func(t *testing.T) {
		current := newAppointment("a1", "1", testDay, "09:00")
		current.Status = domain.StatusCancelled
		current.CancelledAt = &cancelledAt

		got, err := resolveCancelMiss(current, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
		assert.Equal(t, &cancelledAt, got.CancelledAt)
	})

	t.Run("completed cannot be cancelled", func(t *testing.T) {
		current := newAppointment("a1", "1", testDay, "09:00")
		current.Status = domain.StatusCompleted

		_, err := resolveCancelMiss(current, nil)
		assert.ErrorIs(t, err, ErrCannotCancel)
	})
}

type stubRow struct {
	values []interface{}
	err    error
}

func (r stubRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *string:
			*target = r.values[i].(string)
		case *time.Time:
			*target = r.values[i].(time.Time)
		case *types.TimeString:
			*target = types.TimeString(r.values[i].(string))
		case *domain.AppointmentStatus:
			*target = domain.AppointmentStatus(r.values[i].(string))
		case *sql.NullTime:
			if v, ok := r.values[i].(time.Time); ok {
				*target = sql.NullTime{Time: v, Valid: true}
			}
		}
	}
	return nil
}

func TestScanAppointment(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cancelledAt := createdAt.Add(time.Hour)

	t.Run("confirmed", func(t *testing.T) {
		row := stubRow{values: []interface{}{
			"a1", "cust-1", "1", testDay.Add(3 * time.Hour), "09:00", "confirmed", createdAt, nil,
		}}

		appt, err := scanAppointment(row)
		require.NoError(t, err)
		assert.Equal(t, testDay, appt.Date)
		assert.Equal(t, types.TimeString("09:00"), appt.Time)
		assert.Equal(t, domain.StatusConfirmed, appt.Status)
		assert.Nil(t, appt.CancelledAt)
	})

	t.Run("cancelled", func(t *testing.T) {
		row := stubRow{values: []interface{}{
			"a1", "cust-1", "1", testDay, "09:00", "cancelled", createdAt, cancelledAt,
		}}

		appt, err := scanAppointment(row)
		require.NoError(t, err)
		require.NotNil(t, appt.CancelledAt)
		assert.Equal(t, cancelledAt, *appt.CancelledAt)
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := scanAppointment(stubRow{err: sql.ErrNoRows})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
