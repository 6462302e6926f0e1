package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Holidays
	CreateHoliday(ctx context.Context, h *Holiday) error
	DeleteHoliday(ctx context.Context, id uuid.UUID) error
	ListHolidays(ctx context.Context, from, to time.Time) ([]*Holiday, error)
	HolidayExists(ctx context.Context, date time.Time) (bool, error)

	// Shifts
	CreateShift(ctx context.Context, s *Shift) error
	DeleteShift(ctx context.Context, id uuid.UUID) error
	ShiftsFor(ctx context.Context, ownerCode string, date time.Time) ([]*Shift, error)
	ListShiftsByDate(ctx context.Context, date time.Time) ([]*Shift, error)
}
