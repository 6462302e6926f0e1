package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testCatalog() *mockCatalog {
	return &mockCatalog{
		services: map[string]*ServiceRequirement{
			"SRV-CLEAN":   {ServiceCode: "SRV-CLEAN", DurationMinutes: 30, BufferMinutes: 10, CompatibleRoomTypes: []string{"GENERAL"}},
			"SRV-IMPLANT": {ServiceCode: "SRV-IMPLANT", DurationMinutes: 60, BufferMinutes: 15, RequiredSpecializationID: 3, CompatibleRoomTypes: []string{"SURGERY"}},
		},
		rooms: []RoomInfo{
			{RoomCode: "ROOM-1", RoomType: "GENERAL", SupportedServiceCodes: []string{"SRV-CLEAN"}},
			{RoomCode: "ROOM-2", RoomType: "SURGERY", SupportedServiceCodes: []string{"SRV-CLEAN", "SRV-IMPLANT"}},
		},
		doctors: []StaffInfo{
			{EmployeeCode: "DOC-1", FullName: "Vera Lindqvist", SpecializationIDs: []int{SpecMedicalStaff, 3}},
			{EmployeeCode: "DOC-2", FullName: "Omar Haddad", SpecializationIDs: []int{SpecMedicalStaff}},
		},
		assistants: []StaffInfo{
			{EmployeeCode: "AST-1", FullName: "Ines Moreau", SpecializationIDs: []int{SpecMedicalStaff}},
		},
	}
}

func newTestAvailability(shifts *mockShifts, bookings *mockBookings, catalog *mockCatalog, today time.Time) *AvailabilityService {
	svc := NewAvailabilityService(&mockCalendar{}, shifts, bookings, catalog, zerolog.Nop())
	svc.now = func() time.Time { return today }
	return svc
}

func TestAvailableDoctorsFiltersByQualificationAndShift(t *testing.T) {
	date := mustDate("2025-11-03")
	shifts := &mockShifts{byOwner: map[string]map[string][]WorkingShift{
		"DOC-1": {dateKey(date): {{OwnerCode: "DOC-1", Start: At(date, 8, 0), End: At(date, 12, 0)}}},
		"DOC-2": {dateKey(date): {{OwnerCode: "DOC-2", Start: At(date, 8, 0), End: At(date, 16, 0)}}},
	}}
	svc := newTestAvailability(shifts, &mockBookings{}, testCatalog(), date)

	got, err := svc.AvailableDoctors(context.Background(), date, []string{"SRV-IMPLANT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeCode != "DOC-1" {
		t.Fatalf("expected only DOC-1, got %v", got)
	}
	if len(got[0].ShiftTimes) != 1 || got[0].ShiftTimes[0] != "08:00-12:00" {
		t.Errorf("unexpected shift times %v", got[0].ShiftTimes)
	}
}

func TestAvailableDoctorsWithoutShiftExcluded(t *testing.T) {
	date := mustDate("2025-11-03")
	shifts := &mockShifts{byOwner: map[string]map[string][]WorkingShift{}}
	svc := newTestAvailability(shifts, &mockBookings{}, testCatalog(), date)

	got, err := svc.AvailableDoctors(context.Background(), date, []string{"SRV-CLEAN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("no shifts means no doctors, got %v", got)
	}
}

func TestAvailableDoctorsRejectsEmptyServices(t *testing.T) {
	date := mustDate("2025-11-03")
	svc := newTestAvailability(&mockShifts{}, &mockBookings{}, testCatalog(), date)

	_, err := svc.AvailableDoctors(context.Background(), date, nil)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAvailableSlotsIntersectsDoctorAndRoom(t *testing.T) {
	date := mustDate("2025-11-03")
	shifts := &mockShifts{byOwner: map[string]map[string][]WorkingShift{
		"DOC-1":  {dateKey(date): {{Start: At(date, 8, 0), End: At(date, 12, 0)}}},
		"ROOM-2": {dateKey(date): {{Start: At(date, 9, 0), End: At(date, 14, 0)}}},
	}}
	bookings := &mockBookings{busy: map[string]map[string][]BusyInterval{
		"DOC-1": {dateKey(date): {{Start: At(date, 10, 0), End: At(date, 10, 40)}}},
	}}
	svc := newTestAvailability(shifts, bookings, testCatalog(), date)

	slots, err := svc.AvailableSlots(context.Background(), AvailableTimesRequest{
		Date:             date,
		EmployeeCode:     "DOC-1",
		ServiceCodes:     []string{"SRV-CLEAN"},
		ParticipantCodes: []string{"ROOM-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Common free time is 09:00-10:00 and 10:40-12:00; 40-minute service
	// fits once in the first window and twice in the second.
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d: %v", len(slots), slots)
	}
	if !slots[0].Start.Equal(At(date, 9, 0)) || !slots[0].Suggested {
		t.Errorf("first slot should be the suggested 09:00 slot, got %+v", slots[0])
	}
	if !slots[1].Start.Equal(At(date, 10, 40)) {
		t.Errorf("second slot should start 10:40, got %v", slots[1].Start)
	}
}

func TestAvailableSlotsUnknownDoctor(t *testing.T) {
	date := mustDate("2025-11-03")
	svc := newTestAvailability(&mockShifts{}, &mockBookings{}, testCatalog(), date)

	_, err := svc.AvailableSlots(context.Background(), AvailableTimesRequest{
		Date:         date,
		EmployeeCode: "DOC-404",
		ServiceCodes: []string{"SRV-CLEAN"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAvailableSlotsUnknownService(t *testing.T) {
	date := mustDate("2025-11-03")
	svc := newTestAvailability(&mockShifts{}, &mockBookings{}, testCatalog(), date)

	_, err := svc.AvailableSlots(context.Background(), AvailableTimesRequest{
		Date:         date,
		EmployeeCode: "DOC-1",
		ServiceCodes: []string{"SRV-NOPE"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAvailableSlotsPastDateRejected(t *testing.T) {
	today := mustDate("2025-11-03")
	svc := newTestAvailability(&mockShifts{}, &mockBookings{}, testCatalog(), today)

	_, err := svc.AvailableSlots(context.Background(), AvailableTimesRequest{
		Date:         mustDate("2025-11-01"),
		EmployeeCode: "DOC-1",
		ServiceCodes: []string{"SRV-CLEAN"},
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAvailableSlotsNoShiftIsEmptyNotError(t *testing.T) {
	date := mustDate("2025-11-03")
	svc := newTestAvailability(&mockShifts{}, &mockBookings{}, testCatalog(), date)

	slots, err := svc.AvailableSlots(context.Background(), AvailableTimesRequest{
		Date:         date,
		EmployeeCode: "DOC-1",
		ServiceCodes: []string{"SRV-CLEAN"},
	})
	if err != nil {
		t.Fatalf("no availability is not an error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %v", slots)
	}
}

func TestAvailableResources(t *testing.T) {
	date := mustDate("2025-11-03")
	shifts := &mockShifts{byOwner: map[string]map[string][]WorkingShift{
		"ROOM-2": {dateKey(date): {{Start: At(date, 8, 0), End: At(date, 16, 0)}}},
		"AST-1":  {dateKey(date): {{Start: At(date, 8, 0), End: At(date, 12, 0)}}},
	}}
	bookings := &mockBookings{busy: map[string]map[string][]BusyInterval{
		"AST-1": {dateKey(date): {{Start: At(date, 9, 0), End: At(date, 11, 0)}}},
	}}
	svc := newTestAvailability(shifts, bookings, testCatalog(), date)

	out, err := svc.AvailableResources(context.Background(), date, At(date, 9, 0), At(date, 10, 0), []string{"SRV-IMPLANT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.AvailableRooms) != 1 || out.AvailableRooms[0] != "ROOM-2" {
		t.Errorf("expected ROOM-2, got %v", out.AvailableRooms)
	}
	if len(out.AvailableAssistants) != 0 {
		t.Errorf("AST-1 lacks specialization 3, got %v", out.AvailableAssistants)
	}

	out, err = svc.AvailableResources(context.Background(), date, At(date, 9, 30), At(date, 10, 30), []string{"SRV-CLEAN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.AvailableAssistants) != 0 {
		t.Errorf("AST-1 is busy 09:00-11:00, got %v", out.AvailableAssistants)
	}

	out, err = svc.AvailableResources(context.Background(), date, At(date, 11, 0), At(date, 12, 0), []string{"SRV-CLEAN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.AvailableAssistants) != 1 || out.AvailableAssistants[0] != "AST-1" {
		t.Errorf("expected AST-1 free 11:00-12:00, got %v", out.AvailableAssistants)
	}
}

func TestAvailableResourcesInvertedRange(t *testing.T) {
	date := mustDate("2025-11-03")
	svc := newTestAvailability(&mockShifts{}, &mockBookings{}, testCatalog(), date)

	_, err := svc.AvailableResources(context.Background(), date, At(date, 12, 0), At(date, 9, 0), []string{"SRV-CLEAN"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAvailableResourcesRequiresEverySpecialization(t *testing.T) {
	date := mustDate("2025-11-03")
	catalog := testCatalog()
	catalog.services["SRV-ORTHO"] = &ServiceRequirement{ServiceCode: "SRV-ORTHO", DurationMinutes: 30, RequiredSpecializationID: 4, CompatibleRoomTypes: []string{"SURGERY"}}
	catalog.rooms[1].SupportedServiceCodes = append(catalog.rooms[1].SupportedServiceCodes, "SRV-ORTHO")
	catalog.assistants = []StaffInfo{
		{EmployeeCode: "AST-IMP", FullName: "Ines Moreau", SpecializationIDs: []int{SpecMedicalStaff, 3}},
		{EmployeeCode: "AST-BOTH", FullName: "Tomas Duarte", SpecializationIDs: []int{SpecMedicalStaff, 3, 4}},
	}
	shifts := &mockShifts{byOwner: map[string]map[string][]WorkingShift{
		"AST-IMP":  {dateKey(date): {{Start: At(date, 8, 0), End: At(date, 16, 0)}}},
		"AST-BOTH": {dateKey(date): {{Start: At(date, 8, 0), End: At(date, 16, 0)}}},
	}}
	svc := newTestAvailability(shifts, &mockBookings{}, catalog, date)

	// Both services carry a specialization; an assistant holding only one
	// of them does not qualify for the combined request.
	out, err := svc.AvailableResources(context.Background(), date, At(date, 9, 0), At(date, 10, 0), []string{"SRV-IMPLANT", "SRV-ORTHO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.AvailableAssistants) != 1 || out.AvailableAssistants[0] != "AST-BOTH" {
		t.Errorf("only the assistant holding both specializations qualifies, got %v", out.AvailableAssistants)
	}
}
