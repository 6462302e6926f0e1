package calendar

import (
	"time"

	"github.com/google/uuid"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

// Holiday maps to the clinic_holiday table. The clinic is closed for the
// whole day; weekends are implicit and never stored.
type Holiday struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Date      time.Time `db:"holiday_date" json:"date"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Owner types a shift can belong to.
const (
	OwnerStaff = "staff"
	OwnerRoom  = "room"
)

// Shift maps to the working_shift table. OwnerCode references either a
// staff member or a room; both are scheduled through the same interval
// computation.
type Shift struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerCode string    `db:"owner_code" json:"owner_code"`
	OwnerType string    `db:"owner_type" json:"owner_type"`
	Date      time.Time `db:"shift_date" json:"date"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Working projects the shift onto its scheduling view, pinning the clock
// times to the shift's calendar date.
func (s *Shift) Working() scheduling.WorkingShift {
	return scheduling.WorkingShift{
		OwnerCode: s.OwnerCode,
		Date:      scheduling.DateOf(s.Date),
		Start:     onDate(s.Date, s.StartTime),
		End:       onDate(s.Date, s.EndTime),
	}
}

func onDate(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
}
