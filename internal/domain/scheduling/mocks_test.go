package scheduling

import (
	"context"
	"fmt"
	"time"
)

// Map-backed fakes for the collaborator interfaces. Keys for per-date maps
// are YYYY-MM-DD strings.

type mockCalendar struct {
	holidays map[string]bool
}

func (m *mockCalendar) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	return m.holidays[date.Format("2006-01-02")], nil
}

type mockShifts struct {
	// owner -> date -> shifts
	byOwner map[string]map[string][]WorkingShift
}

func (m *mockShifts) ShiftsFor(_ context.Context, ownerCode string, date time.Time) ([]WorkingShift, error) {
	return m.byOwner[ownerCode][date.Format("2006-01-02")], nil
}

type mockBookings struct {
	// owner -> date -> busy intervals
	busy map[string]map[string][]BusyInterval
	// service -> date -> count
	counts map[string]map[string]int
}

func (m *mockBookings) BusyIntervalsFor(_ context.Context, ownerCode string, date time.Time) ([]BusyInterval, error) {
	return m.busy[ownerCode][date.Format("2006-01-02")], nil
}

func (m *mockBookings) CountForService(_ context.Context, serviceCode string, date time.Time) (int, error) {
	return m.counts[serviceCode][date.Format("2006-01-02")], nil
}

type mockCatalog struct {
	services   map[string]*ServiceRequirement
	rooms      []RoomInfo
	doctors    []StaffInfo
	assistants []StaffInfo
}

func (m *mockCatalog) Service(_ context.Context, code string) (*ServiceRequirement, error) {
	svc, ok := m.services[code]
	if !ok {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, code)
	}
	return svc, nil
}

func (m *mockCatalog) Rooms(_ context.Context) ([]RoomInfo, error)       { return m.rooms, nil }
func (m *mockCatalog) Doctors(_ context.Context) ([]StaffInfo, error)    { return m.doctors, nil }
func (m *mockCatalog) Assistants(_ context.Context) ([]StaffInfo, error) { return m.assistants, nil }

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func mustDate(t string) time.Time {
	d, err := time.Parse("2006-01-02", t)
	if err != nil {
		panic(err)
	}
	return d
}
