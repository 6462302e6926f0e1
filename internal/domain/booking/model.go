package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusBooked     = "BOOKED"
	StatusConfirmed  = "CONFIRMED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
	StatusNoShow     = "NO_SHOW"
)

// statusTransitions is the allowed transition table. Terminal states have
// no outgoing edges.
var statusTransitions = map[string][]string{
	StatusBooked:     {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// blocking statuses hold their time range against new bookings. Cancelled
// and no-show appointments free their slots.
var blockingStatuses = map[string]bool{
	StatusBooked:     true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
}

// Blocks reports whether the status keeps the appointment's interval busy.
func Blocks(status string) bool { return blockingStatuses[status] }

// Appointment maps to the appointment table. The overlap guarantee is
// enforced by an exclusion constraint per resource owner; computed
// availability is advisory and the insert is the arbiter under concurrency.
type Appointment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Code          string     `db:"code" json:"code"`
	PatientCode   string     `db:"patient_code" json:"patient_code"`
	DoctorCode    string     `db:"doctor_code" json:"doctor_code"`
	RoomCode      string     `db:"room_code" json:"room_code"`
	AssistantCode *string    `db:"assistant_code" json:"assistant_code,omitempty"`
	ServiceCodes  []string   `db:"service_codes" json:"service_codes"`
	StartAt       time.Time  `db:"start_at" json:"start_at"`
	EndAt         time.Time  `db:"end_at" json:"end_at"`
	Status        string     `db:"status" json:"status"`
	PlanItemID    *uuid.UUID `db:"plan_item_id" json:"plan_item_id,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Owners returns every resource the appointment occupies.
func (a *Appointment) Owners() []string {
	owners := []string{a.DoctorCode, a.RoomCode}
	if a.AssistantCode != nil && *a.AssistantCode != "" {
		owners = append(owners, *a.AssistantCode)
	}
	return owners
}
