package catalog

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

const svcCols = `id, code, name, duration_minutes, buffer_minutes, price_cents,
	required_specialization_id, compatible_room_types,
	min_preparation_days, recovery_days, spacing_days, max_per_day,
	active, created_at, updated_at`

func (r *repoPG) CreateService(ctx context.Context, svc *DentalService) error {
	svc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO dental_service (
			id, code, name, duration_minutes, buffer_minutes, price_cents,
			required_specialization_id, compatible_room_types,
			min_preparation_days, recovery_days, spacing_days, max_per_day, active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		svc.ID, svc.Code, svc.Name, svc.DurationMinutes, svc.BufferMinutes, svc.PriceCents,
		svc.RequiredSpecializationID, svc.CompatibleRoomTypes,
		svc.MinPreparationDays, svc.RecoveryDays, svc.SpacingDays, svc.MaxPerDay, svc.Active,
	)
	return err
}

func (r *repoPG) GetServiceByCode(ctx context.Context, code string) (*DentalService, error) {
	return scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+svcCols+` FROM dental_service WHERE code = $1`, code))
}

func (r *repoPG) UpdateService(ctx context.Context, svc *DentalService) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE dental_service SET
			name=$2, duration_minutes=$3, buffer_minutes=$4, price_cents=$5,
			required_specialization_id=$6, compatible_room_types=$7,
			min_preparation_days=$8, recovery_days=$9, spacing_days=$10,
			max_per_day=$11, active=$12, updated_at=NOW()
		WHERE id = $1`,
		svc.ID, svc.Name, svc.DurationMinutes, svc.BufferMinutes, svc.PriceCents,
		svc.RequiredSpecializationID, svc.CompatibleRoomTypes,
		svc.MinPreparationDays, svc.RecoveryDays, svc.SpacingDays,
		svc.MaxPerDay, svc.Active,
	)
	return err
}

func (r *repoPG) DeleteService(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM dental_service WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListServices(ctx context.Context, limit, offset int) ([]*DentalService, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dental_service`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+svcCols+` FROM dental_service ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var svcs []*DentalService
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		svcs = append(svcs, svc)
	}
	return svcs, total, nil
}

const roomCols = `id, code, name, room_type, supported_service_codes, active, created_at, updated_at`

func (r *repoPG) CreateRoom(ctx context.Context, room *Room) error {
	room.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO room (id, code, name, room_type, supported_service_codes, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		room.ID, room.Code, room.Name, room.RoomType, room.SupportedServiceCodes, room.Active,
	)
	return err
}

func (r *repoPG) GetRoomByCode(ctx context.Context, code string) (*Room, error) {
	return scanRoom(r.conn(ctx).QueryRow(ctx,
		`SELECT `+roomCols+` FROM room WHERE code = $1`, code))
}

func (r *repoPG) UpdateRoom(ctx context.Context, room *Room) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE room SET name=$2, room_type=$3, supported_service_codes=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		room.ID, room.Name, room.RoomType, room.SupportedServiceCodes, room.Active,
	)
	return err
}

func (r *repoPG) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM room WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListRooms(ctx context.Context) ([]*Room, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+roomCols+` FROM room WHERE active ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

const staffCols = `id, code, full_name, role, specialization_ids, active, created_at, updated_at`

func (r *repoPG) CreateStaff(ctx context.Context, m *StaffMember) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_member (id, code, full_name, role, specialization_ids, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.Code, m.FullName, m.Role, m.SpecializationIDs, m.Active,
	)
	return err
}

func (r *repoPG) GetStaffByCode(ctx context.Context, code string) (*StaffMember, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff_member WHERE code = $1`, code))
}

func (r *repoPG) UpdateStaff(ctx context.Context, m *StaffMember) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff_member SET full_name=$2, role=$3, specialization_ids=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.FullName, m.Role, m.SpecializationIDs, m.Active,
	)
	return err
}

func (r *repoPG) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_member WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListStaffByRole(ctx context.Context, role string) ([]*StaffMember, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff_member WHERE role = $1 AND active ORDER BY code`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStaff(rows)
}

func (r *repoPG) ListStaff(ctx context.Context, limit, offset int) ([]*StaffMember, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff_member`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff_member ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	staff, err := collectStaff(rows)
	return staff, total, err
}

func scanService(row pgx.Row) (*DentalService, error) {
	var s DentalService
	err := row.Scan(
		&s.ID, &s.Code, &s.Name, &s.DurationMinutes, &s.BufferMinutes, &s.PriceCents,
		&s.RequiredSpecializationID, &s.CompatibleRoomTypes,
		&s.MinPreparationDays, &s.RecoveryDays, &s.SpacingDays, &s.MaxPerDay,
		&s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	err := row.Scan(
		&rm.ID, &rm.Code, &rm.Name, &rm.RoomType, &rm.SupportedServiceCodes,
		&rm.Active, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func scanStaff(row pgx.Row) (*StaffMember, error) {
	var m StaffMember
	err := row.Scan(
		&m.ID, &m.Code, &m.FullName, &m.Role, &m.SpecializationIDs,
		&m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectStaff(rows pgx.Rows) ([]*StaffMember, error) {
	var staff []*StaffMember
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, m)
	}
	return staff, nil
}
