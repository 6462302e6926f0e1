package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
	// failCreates makes the next n Create calls fail with a conflict.
	failCreates int
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: map[uuid.UUID]*Appointment{}}
}

func (m *mockRepo) Create(_ context.Context, appt *Appointment) error {
	if m.failCreates > 0 {
		m.failCreates--
		return fmt.Errorf("%w: slot taken", scheduling.ErrReservationConflict)
	}
	for _, existing := range m.appts {
		if !Blocks(existing.Status) {
			continue
		}
		for _, owner := range appt.Owners() {
			for _, other := range existing.Owners() {
				if owner == other && appt.StartAt.Before(existing.EndAt) && existing.StartAt.Before(appt.EndAt) {
					return fmt.Errorf("%w: %s overlaps", scheduling.ErrReservationConflict, owner)
				}
			}
		}
	}
	appt.ID = uuid.New()
	m.appts[appt.ID] = appt
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	appt, ok := m.appts[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return appt, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Appointment, error) {
	for _, appt := range m.appts {
		if appt.Code == code {
			return appt, nil
		}
	}
	return nil, fmt.Errorf("no rows")
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	appt, ok := m.appts[id]
	if !ok {
		return fmt.Errorf("no rows")
	}
	appt.Status = status
	return nil
}

func (m *mockRepo) ListByDate(_ context.Context, date time.Time, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, appt := range m.appts {
		if scheduling.DateOf(appt.StartAt).Equal(date) {
			out = append(out, appt)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientCode string, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, appt := range m.appts {
		if appt.PatientCode == patientCode {
			out = append(out, appt)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) BusyIntervalsFor(_ context.Context, ownerCode string, date time.Time) ([]scheduling.BusyInterval, error) {
	var busy []scheduling.BusyInterval
	for _, appt := range m.appts {
		if !Blocks(appt.Status) || !scheduling.DateOf(appt.StartAt).Equal(date) {
			continue
		}
		for _, owner := range appt.Owners() {
			if owner == ownerCode {
				busy = append(busy, scheduling.BusyInterval{OwnerCode: owner, Start: appt.StartAt, End: appt.EndAt})
			}
		}
	}
	return busy, nil
}

func (m *mockRepo) CountForService(_ context.Context, serviceCode string, date time.Time) (int, error) {
	count := 0
	for _, appt := range m.appts {
		if !Blocks(appt.Status) || !scheduling.DateOf(appt.StartAt).Equal(date) {
			continue
		}
		for _, code := range appt.ServiceCodes {
			if code == serviceCode {
				count++
			}
		}
	}
	return count, nil
}

type mockSeq struct{ n int }

func (m *mockSeq) Next(_ context.Context, kind string) (string, error) {
	m.n++
	return fmt.Sprintf("APT-%06d", m.n), nil
}

func at(day string, h, m int) time.Time {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, time.UTC)
}

func validRequest() ReserveRequest {
	return ReserveRequest{
		PatientCode:  "PAT-1",
		DoctorCode:   "DOC-1",
		RoomCode:     "ROOM-1",
		ServiceCodes: []string{"SRV-CLEAN"},
		StartAt:      at("2025-11-03", 9, 0),
		EndAt:        at("2025-11-03", 9, 40),
	}
}

func TestReserve(t *testing.T) {
	svc := NewService(newMockRepo(), &mockSeq{}, nil, zerolog.Nop())

	appt, err := svc.Reserve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != StatusBooked {
		t.Errorf("new appointment should be BOOKED, got %s", appt.Status)
	}
	if appt.Code != "APT-000001" {
		t.Errorf("unexpected code %s", appt.Code)
	}
	// Notes are optional; a request without them must still reserve and
	// the stored appointment carries no notes.
	if appt.Notes != nil {
		t.Errorf("omitted notes should stay nil, got %q", *appt.Notes)
	}
}

func TestReserveValidation(t *testing.T) {
	svc := NewService(newMockRepo(), &mockSeq{}, nil, zerolog.Nop())
	ctx := context.Background()

	req := validRequest()
	req.PatientCode = ""
	if _, err := svc.Reserve(ctx, req); !errors.Is(err, scheduling.ErrInvalidRequest) {
		t.Errorf("missing patient should fail, got %v", err)
	}

	req = validRequest()
	req.EndAt = req.StartAt
	if _, err := svc.Reserve(ctx, req); !errors.Is(err, scheduling.ErrInvalidRequest) {
		t.Errorf("empty interval should fail, got %v", err)
	}
}

func TestReserveOverlapConflict(t *testing.T) {
	svc := NewService(newMockRepo(), &mockSeq{}, nil, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, validRequest()); err != nil {
		t.Fatalf("first reservation should succeed: %v", err)
	}

	overlapping := validRequest()
	overlapping.PatientCode = "PAT-2"
	overlapping.StartAt = at("2025-11-03", 9, 20)
	overlapping.EndAt = at("2025-11-03", 10, 0)
	if _, err := svc.Reserve(ctx, overlapping); !errors.Is(err, scheduling.ErrReservationConflict) {
		t.Errorf("overlapping reservation should conflict, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusBooked, StatusConfirmed, true},
		{StatusBooked, StatusCancelled, true},
		{StatusBooked, StatusCompleted, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusBooked, false},
		{StatusNoShow, StatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	svc := NewService(newMockRepo(), &mockSeq{}, nil, zerolog.Nop())
	ctx := context.Background()

	appt, err := svc.Reserve(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Transition(ctx, appt.ID, StatusCompleted); !errors.Is(err, scheduling.ErrInvalidRequest) {
		t.Errorf("BOOKED -> COMPLETED should be rejected, got %v", err)
	}
	if _, err := svc.Transition(ctx, appt.ID, StatusConfirmed); err != nil {
		t.Errorf("BOOKED -> CONFIRMED should succeed, got %v", err)
	}
}

func TestCancelledAppointmentFreesInterval(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockSeq{}, nil, zerolog.Nop())
	ctx := context.Background()

	appt, err := svc.Reserve(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(ctx, appt.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	busy, err := svc.BusyIntervalsFor(ctx, "DOC-1", at("2025-11-03", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(busy) != 0 {
		t.Errorf("cancelled appointment should not block, got %v", busy)
	}

	if _, err := svc.Reserve(ctx, validRequest()); err != nil {
		t.Errorf("slot should be bookable again after cancel: %v", err)
	}
}

func TestBusyIntervalsCoverAllOwners(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockSeq{}, nil, zerolog.Nop())
	ctx := context.Background()

	assistant := "AST-1"
	req := validRequest()
	req.AssistantCode = &assistant
	if _, err := svc.Reserve(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, owner := range []string{"DOC-1", "ROOM-1", "AST-1"} {
		busy, err := svc.BusyIntervalsFor(ctx, owner, at("2025-11-03", 0, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(busy) != 1 {
			t.Errorf("%s should have one busy interval, got %d", owner, len(busy))
		}
	}
}

func TestCountForServiceExcludesCancelled(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockSeq{}, nil, zerolog.Nop())
	ctx := context.Background()

	appt, err := svc.Reserve(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := svc.CountForService(ctx, "SRV-CLEAN", at("2025-11-03", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	if _, err := svc.Cancel(ctx, appt.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, err = svc.CountForService(ctx, "SRV-CLEAN", at("2025-11-03", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("cancelled appointment should not count, got %d", count)
	}
}

func TestReserveNextAvailableRetriesOnConflict(t *testing.T) {
	repo := newMockRepo()
	repo.failCreates = 1

	// A date safely in the future; availability queries reject the past.
	date := at("2099-01-05", 0, 0)
	shifts := &stubShifts{date: date}
	catalog := &stubCatalog{}
	avail := scheduling.NewAvailabilityService(&stubCalendar{}, shifts, repoAsStore{repo}, catalog, zerolog.Nop())

	svc := NewService(repo, &mockSeq{}, avail, zerolog.Nop())

	appt, err := svc.ReserveNextAvailable(context.Background(), validRequest(), date)
	if err != nil {
		t.Fatalf("retry after conflict should succeed: %v", err)
	}
	if appt == nil || appt.Status != StatusBooked {
		t.Errorf("unexpected appointment %+v", appt)
	}
}

// Minimal collaborator stubs for the retry test.

type stubCalendar struct{}

func (stubCalendar) IsHoliday(context.Context, time.Time) (bool, error) { return false, nil }

type stubShifts struct{ date time.Time }

func (s *stubShifts) ShiftsFor(_ context.Context, ownerCode string, date time.Time) ([]scheduling.WorkingShift, error) {
	if !scheduling.DateOf(date).Equal(scheduling.DateOf(s.date)) {
		return nil, nil
	}
	return []scheduling.WorkingShift{{
		OwnerCode: ownerCode,
		Date:      date,
		Start:     scheduling.At(date, 8, 0),
		End:       scheduling.At(date, 12, 0),
	}}, nil
}

type stubCatalog struct{}

func (stubCatalog) Service(_ context.Context, code string) (*scheduling.ServiceRequirement, error) {
	return &scheduling.ServiceRequirement{ServiceCode: code, DurationMinutes: 30, BufferMinutes: 10}, nil
}

func (stubCatalog) Rooms(context.Context) ([]scheduling.RoomInfo, error) {
	return []scheduling.RoomInfo{{RoomCode: "ROOM-1", RoomType: "GENERAL", SupportedServiceCodes: []string{"SRV-CLEAN"}}}, nil
}

func (stubCatalog) Doctors(context.Context) ([]scheduling.StaffInfo, error) {
	return []scheduling.StaffInfo{{EmployeeCode: "DOC-1", SpecializationIDs: []int{1}}}, nil
}

func (stubCatalog) Assistants(context.Context) ([]scheduling.StaffInfo, error) {
	return nil, nil
}

// repoAsStore exposes the mock repository as the scheduling BookingStore.
type repoAsStore struct{ repo *mockRepo }

func (r repoAsStore) BusyIntervalsFor(ctx context.Context, ownerCode string, date time.Time) ([]scheduling.BusyInterval, error) {
	return r.repo.BusyIntervalsFor(ctx, ownerCode, date)
}

func (r repoAsStore) CountForService(ctx context.Context, serviceCode string, date time.Time) (int, error) {
	return r.repo.CountForService(ctx, serviceCode, date)
}
