package treatment

import (
	"context"

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

const planCols = `id, code, patient_code, title, status, created_at, updated_at`

func (r *repoPG) CreatePlan(ctx context.Context, plan *TreatmentPlan) error {
	plan.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_plan (id, code, patient_code, title, status)
		VALUES ($1,$2,$3,$4,$5)`,
		plan.ID, plan.Code, plan.PatientCode, plan.Title, plan.Status,
	)
	return err
}

func (r *repoPG) GetPlanByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE id = $1`, id))
}

func (r *repoPG) GetPlanByCode(ctx context.Context, code string) (*TreatmentPlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE code = $1`, code))
}

func (r *repoPG) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE treatment_plan SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) ListPlansByPatient(ctx context.Context, patientCode string, limit, offset int) ([]*TreatmentPlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM treatment_plan WHERE patient_code = $1`, patientCode).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM treatment_plan
		 WHERE patient_code = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientCode, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var plans []*TreatmentPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, plan)
	}
	return plans, total, nil
}

const itemCols = `id, plan_id, sequence_number, service_code, status,
	scheduled_date, appointment_id, notes, created_at, updated_at`

func (r *repoPG) CreateItem(ctx context.Context, item *PlanItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO plan_item (id, plan_id, sequence_number, service_code, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		item.ID, item.PlanID, item.SequenceNumber, item.ServiceCode, item.Status, item.Notes,
	)
	return err
}

func (r *repoPG) GetItem(ctx context.Context, id uuid.UUID) (*PlanItem, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+itemCols+` FROM plan_item WHERE id = $1`, id))
}

func (r *repoPG) UpdateItem(ctx context.Context, item *PlanItem) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE plan_item SET status=$2, scheduled_date=$3, appointment_id=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		item.ID, item.Status, item.ScheduledDate, item.AppointmentID, item.Notes,
	)
	return err
}

func (r *repoPG) ListItems(ctx context.Context, planID uuid.UUID) ([]*PlanItem, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM plan_item WHERE plan_id = $1 ORDER BY sequence_number`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*PlanItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *repoPG) NextSequenceNumber(ctx context.Context, planID uuid.UUID) (int, error) {
	var next int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM plan_item WHERE plan_id = $1`, planID).Scan(&next)
	return next, err
}

func scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.Code, &p.PatientCode, &p.Title, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanItem(row pgx.Row) (*PlanItem, error) {
	var i PlanItem
	err := row.Scan(
		&i.ID, &i.PlanID, &i.SequenceNumber, &i.ServiceCode, &i.Status,
		&i.ScheduledDate, &i.AppointmentID, &i.Notes, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
