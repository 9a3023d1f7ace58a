package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SpaBookingService/pkg/txmanager"
)

const (
	tableAppointments = "appointments"

	// uniqueActiveSlotIndex частичный уникальный индекс (service_id, booking_date, start_time) WHERE status <> 'cancelled'
	uniqueActiveSlotIndex = "appointments_active_slot_uidx"

	codeUniqueViolation = "23505"
)

var appointmentColumns = []string{
	"id",
	"customer_id",
	"service_id",
	"booking_date",
	"start_time",
	"status",
	"created_at",
	"cancelled_at",
}

// Repository репозиторий записей в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую запись
// Уникальность активного слота гарантирует частичный индекс: при гонке вторая вставка
// получает unique violation, который превращается в ErrSlotNotAvailable
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := insertQuery(appt).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if isActiveSlotViolation(err) {
			return nil, ErrSlotNotAvailable
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	created := *appt
	created.Date = domain.NormalizeDate(appt.Date)
	return &created, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := getByIDQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// ExistsActive проверяет, занят ли слот активной записью
// Внутри транзакции блокирует найденные строки (FOR UPDATE)
func (r *Repository) ExistsActive(ctx context.Context, key domain.SlotKey) (bool, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := existsActiveQuery(key, txmanager.IsInTransaction(ctx)).ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActive - build select query: %v", ErrBuildQuery, err)
	}

	var id string
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActive - execute query: %w", ErrExecQuery, err)
	}

	return true, nil
}

// ListByFilter возвращает записи, подходящие под фильтр
// Сортировка: дата, время, момент создания (по возрастанию)
func (r *Repository) ListByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := listByFilterQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByFilter - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByFilter - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}

// Cancel переводит запись из confirmed в cancelled
// Повторная отмена уже отмененной записи возвращает ее без изменений
func (r *Repository) Cancel(ctx context.Context, id string, cancelledAt time.Time) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := cancelQuery(id, cancelledAt).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == nil {
		return appt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	// Ничего не обновили: записи нет или она уже не confirmed
	return resolveCancelMiss(r.GetByID(ctx, id))
}

// resolveCancelMiss решает исход отмены, когда UPDATE не затронул строк
func resolveCancelMiss(current *domain.Appointment, err error) (*domain.Appointment, error) {
	if err != nil {
		return nil, err
	}
	if current.Status == domain.StatusCancelled {
		return current, nil
	}
	return nil, ErrCannotCancel
}

// isActiveSlotViolation unique violation на индексе активного слота
func isActiveSlotViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == codeUniqueViolation &&
		pqErr.Constraint == uniqueActiveSlotIndex
}

func insertQuery(appt *domain.Appointment) squirrel.InsertBuilder {
	return psqlbuilder.Insert(tableAppointments).
		Columns(
			"id",
			"customer_id",
			"service_id",
			"booking_date",
			"start_time",
			"status",
			"created_at",
		).
		Values(
			appt.ID,
			appt.CustomerID,
			appt.ServiceID,
			domain.NormalizeDate(appt.Date),
			appt.Time,
			appt.Status,
			appt.CreatedAt,
		)
}

func getByIDQuery(id string) squirrel.SelectBuilder {
	return psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{"id": id})
}

// existsActiveQuery внутри транзакции блокирует найденные строки (FOR UPDATE)
func existsActiveQuery(key domain.SlotKey, forUpdate bool) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select("id").
		From(tableAppointments).
		Where(squirrel.Eq{
			"service_id":   key.ServiceID,
			"booking_date": key.Date,
			"start_time":   key.Time,
		}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Limit(1)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}
	return selectBuilder
}

func listByFilterQuery(filter domain.AppointmentsFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments)

	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"booking_date": domain.NormalizeDate(*filter.Date)})
	}
	if filter.ServiceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}
	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	return selectBuilder.OrderBy("booking_date ASC", "start_time ASC", "created_at ASC")
}

func cancelQuery(id string, cancelledAt time.Time) squirrel.UpdateBuilder {
	return psqlbuilder.Update(tableAppointments).
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", cancelledAt).
		Where(squirrel.Eq{"id": id, "status": domain.StatusConfirmed}).
		Suffix("RETURNING " + strings.Join(appointmentColumns, ", "))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt        domain.Appointment
		cancelledAt sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.CustomerID,
		&appt.ServiceID,
		&appt.Date,
		&appt.Time,
		&appt.Status,
		&appt.CreatedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Date = domain.NormalizeDate(appt.Date)
	if cancelledAt.Valid {
		t := cancelledAt.Time
		appt.CancelledAt = &t
	}

	return &appt, nil
}
