package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

// Service manages clinic holidays and working shifts, and answers the
// closure and roster questions availability computation asks. It implements
// the scheduling package's CalendarAuthority and ShiftCatalog.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddHoliday(ctx context.Context, h *Holiday) error {
	if h.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if h.Name == "" {
		return fmt.Errorf("name is required")
	}
	h.Date = scheduling.DateOf(h.Date)
	return s.repo.CreateHoliday(ctx, h)
}

func (s *Service) RemoveHoliday(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteHoliday(ctx, id)
}

func (s *Service) ListHolidays(ctx context.Context, from, to time.Time) ([]*Holiday, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("to must not precede from")
	}
	return s.repo.ListHolidays(ctx, from, to)
}

func (s *Service) AddShift(ctx context.Context, sh *Shift) error {
	if sh.OwnerCode == "" {
		return fmt.Errorf("owner_code is required")
	}
	if sh.OwnerType != OwnerStaff && sh.OwnerType != OwnerRoom {
		return fmt.Errorf("invalid owner_type: %s", sh.OwnerType)
	}
	if sh.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if !sh.StartTime.Before(sh.EndTime) {
		return fmt.Errorf("start_time must precede end_time")
	}
	sh.Date = scheduling.DateOf(sh.Date)
	return s.repo.CreateShift(ctx, sh)
}

func (s *Service) RemoveShift(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteShift(ctx, id)
}

func (s *Service) ShiftsByDate(ctx context.Context, date time.Time) ([]*Shift, error) {
	return s.repo.ListShiftsByDate(ctx, scheduling.DateOf(date))
}

// IsHoliday implements scheduling.CalendarAuthority.
func (s *Service) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	return s.repo.HolidayExists(ctx, scheduling.DateOf(date))
}

// ShiftsFor implements scheduling.ShiftCatalog.
func (s *Service) ShiftsFor(ctx context.Context, ownerCode string, date time.Time) ([]scheduling.WorkingShift, error) {
	shifts, err := s.repo.ShiftsFor(ctx, ownerCode, scheduling.DateOf(date))
	if err != nil {
		return nil, err
	}
	out := make([]scheduling.WorkingShift, 0, len(shifts))
	for _, sh := range shifts {
		out = append(out, sh.Working())
	}
	return out, nil
}
