package scheduling

import (
	"context"
	"time"
)

// The scheduling core never reaches into storage on its own. It consumes
// read-only snapshots through the interfaces below and returns decisions;
// the booking domain applies them transactionally.

// CalendarAuthority answers clinic-closure questions. Weekends are derived
// locally from the date itself.
type CalendarAuthority interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

// ShiftCatalog supplies working shifts for any resource owner (doctor,
// assistant or room) on a given date.
type ShiftCatalog interface {
	ShiftsFor(ctx context.Context, ownerCode string, date time.Time) ([]WorkingShift, error)
}

// BookingStore exposes existing commitments. Computed availability is
// advisory; the booking write path re-validates no-overlap at commit time.
type BookingStore interface {
	BusyIntervalsFor(ctx context.Context, ownerCode string, date time.Time) ([]BusyInterval, error)
	CountForService(ctx context.Context, serviceCode string, date time.Time) (int, error)
}

// Catalog supplies service metadata and the room/staff snapshots the
// resource filter narrows down.
type Catalog interface {
	Service(ctx context.Context, code string) (*ServiceRequirement, error)
	Rooms(ctx context.Context) ([]RoomInfo, error)
	Doctors(ctx context.Context) ([]StaffInfo, error)
	Assistants(ctx context.Context) ([]StaffInfo, error)
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
