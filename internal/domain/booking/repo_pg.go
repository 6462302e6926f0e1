package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
	"github.com/novadent/clinic-api/internal/platform/db"
)

// pgExclusionViolation is the SQLSTATE raised when an insert collides with
// the per-owner no-overlap exclusion constraint.
const pgExclusionViolation = "23P01"

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

const apptCols = `id, code, patient_code, doctor_code, room_code, assistant_code,
	service_codes, start_at, end_at, status, plan_item_id, notes, created_at, updated_at`

// Create inserts the appointment and one slot row per occupied resource in
// a single transaction. The slot table carries the exclusion constraint, so
// a concurrent overlapping insert fails here with ErrReservationConflict
// and the whole appointment rolls back.
func (r *repoPG) Create(ctx context.Context, appt *Appointment) error {
	appt.ID = uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO appointment (
			id, code, patient_code, doctor_code, room_code, assistant_code,
			service_codes, start_at, end_at, status, plan_item_id, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		appt.ID, appt.Code, appt.PatientCode, appt.DoctorCode, appt.RoomCode, appt.AssistantCode,
		appt.ServiceCodes, appt.StartAt, appt.EndAt, appt.Status, appt.PlanItemID, appt.Notes,
	)
	if err != nil {
		return mapConflict(err)
	}

	for _, owner := range appt.Owners() {
		_, err = tx.Exec(ctx, `
			INSERT INTO appointment_slot (id, appointment_id, owner_code, during)
			VALUES ($1, $2, $3, tstzrange($4, $5, '[)'))`,
			uuid.New(), appt.ID, owner, appt.StartAt, appt.EndAt,
		)
		if err != nil {
			return mapConflict(err)
		}
	}

	return tx.Commit(ctx)
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
		return fmt.Errorf("%w: %s", scheduling.ErrReservationConflict, pgErr.Detail)
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE code = $1`, code))
}

// UpdateStatus changes the status and releases the slot rows once the
// status no longer blocks the time range.
func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE appointment SET status=$2, updated_at=NOW() WHERE id = $1`, id, status); err != nil {
		return err
	}
	if !Blocks(status) {
		if _, err := tx.Exec(ctx,
			`DELETE FROM appointment_slot WHERE appointment_id = $1`, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repoPG) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*Appointment, int, error) {
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE start_at >= $1 AND start_at < $2`,
		dayStart, dayEnd).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment
		 WHERE start_at >= $1 AND start_at < $2
		 ORDER BY start_at LIMIT $3 OFFSET $4`,
		dayStart, dayEnd, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAppts(rows, total)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientCode string, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE patient_code = $1`, patientCode).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment
		 WHERE patient_code = $1 ORDER BY start_at DESC LIMIT $2 OFFSET $3`,
		patientCode, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAppts(rows, total)
}

func (r *repoPG) BusyIntervalsFor(ctx context.Context, ownerCode string, date time.Time) ([]scheduling.BusyInterval, error) {
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT lower(during), upper(during)
		FROM appointment_slot
		WHERE owner_code = $1 AND during && tstzrange($2, $3, '[)')
		ORDER BY lower(during)`, ownerCode, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var busy []scheduling.BusyInterval
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		busy = append(busy, scheduling.BusyInterval{OwnerCode: ownerCode, Start: start, End: end})
	}
	return busy, nil
}

func (r *repoPG) CountForService(ctx context.Context, serviceCode string, date time.Time) (int, error) {
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE $1 = ANY(service_codes)
		  AND start_at >= $2 AND start_at < $3
		  AND status NOT IN ($4, $5)`,
		serviceCode, dayStart, dayEnd, StatusCancelled, StatusNoShow).Scan(&count)
	return count, err
}

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.Code, &a.PatientCode, &a.DoctorCode, &a.RoomCode, &a.AssistantCode,
		&a.ServiceCodes, &a.StartAt, &a.EndAt, &a.Status, &a.PlanItemID, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppts(rows pgx.Rows, total int) ([]*Appointment, int, error) {
	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, a)
	}
	return appts, total, nil
}

// pgSequenceAllocator issues codes like APT-000042 from a Postgres
// sequence per kind.
type pgSequenceAllocator struct {
	pool *pgxpool.Pool
}

func NewSequenceAllocator(pool *pgxpool.Pool) SequenceAllocator {
	return &pgSequenceAllocator{pool: pool}
}

var sequenceNames = map[string]string{
	"appointment": "appointment_code_seq",
	"plan":        "treatment_plan_code_seq",
}

var sequencePrefixes = map[string]string{
	"appointment": "APT",
	"plan":        "TP",
}

func (a *pgSequenceAllocator) Next(ctx context.Context, kind string) (string, error) {
	seq, ok := sequenceNames[kind]
	if !ok {
		return "", fmt.Errorf("unknown sequence kind: %s", kind)
	}
	var n int64
	if err := a.pool.QueryRow(ctx, `SELECT nextval($1)`, seq).Scan(&n); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", sequencePrefixes[kind], n), nil
}
