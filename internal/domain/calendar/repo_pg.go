package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novadent/clinic-api/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) CreateHoliday(ctx context.Context, h *Holiday) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinic_holiday (id, holiday_date, name) VALUES ($1,$2,$3)`,
		h.ID, h.Date, h.Name,
	)
	return err
}

func (r *repoPG) DeleteHoliday(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinic_holiday WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListHolidays(ctx context.Context, from, to time.Time) ([]*Holiday, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, holiday_date, name, created_at
		FROM clinic_holiday
		WHERE holiday_date BETWEEN $1 AND $2
		ORDER BY holiday_date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []*Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, &h)
	}
	return holidays, nil
}

func (r *repoPG) HolidayExists(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM clinic_holiday WHERE holiday_date = $1)`, date).Scan(&exists)
	return exists, err
}

func (r *repoPG) CreateShift(ctx context.Context, s *Shift) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO working_shift (id, owner_code, owner_type, shift_date, start_time, end_time)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.OwnerCode, s.OwnerType, s.Date, s.StartTime, s.EndTime,
	)
	return err
}

func (r *repoPG) DeleteShift(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM working_shift WHERE id = $1`, id)
	return err
}

const shiftCols = `id, owner_code, owner_type, shift_date, start_time, end_time, created_at`

func (r *repoPG) ShiftsFor(ctx context.Context, ownerCode string, date time.Time) ([]*Shift, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+shiftCols+` FROM working_shift
		WHERE owner_code = $1 AND shift_date = $2
		ORDER BY start_time`, ownerCode, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (r *repoPG) ListShiftsByDate(ctx context.Context, date time.Time) ([]*Shift, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+shiftCols+` FROM working_shift
		WHERE shift_date = $1
		ORDER BY owner_code, start_time`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func collectShifts(rows pgx.Rows) ([]*Shift, error) {
	var shifts []*Shift
	for rows.Next() {
		var s Shift
		if err := rows.Scan(&s.ID, &s.OwnerCode, &s.OwnerType, &s.Date, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
			return nil, err
		}
		shifts = append(shifts, &s)
	}
	return shifts, nil
}
