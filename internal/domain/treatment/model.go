package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Treatment plan statuses.
const (
	PlanDraft     = "DRAFT"
	PlanActive    = "ACTIVE"
	PlanCompleted = "COMPLETED"
	PlanCancelled = "CANCELLED"
)

var planTransitions = map[string][]string{
	PlanDraft:     {PlanActive, PlanCancelled},
	PlanActive:    {PlanCompleted, PlanCancelled},
	PlanCompleted: {},
	PlanCancelled: {},
}

// CanTransitionPlan reports whether from -> to is an allowed plan status
// change.
func CanTransitionPlan(from, to string) bool {
	for _, next := range planTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Plan item statuses.
const (
	ItemPending         = "PENDING"
	ItemReadyForBooking = "READY_FOR_BOOKING"
	ItemScheduled       = "SCHEDULED"
	ItemInProgress      = "IN_PROGRESS"
	ItemCompleted       = "COMPLETED"
	ItemSkipped         = "SKIPPED"
)

var itemTransitions = map[string][]string{
	ItemPending:         {ItemReadyForBooking, ItemSkipped},
	ItemReadyForBooking: {ItemScheduled, ItemSkipped},
	ItemScheduled:       {ItemInProgress, ItemReadyForBooking, ItemSkipped},
	ItemInProgress:      {ItemCompleted, ItemSkipped},
	ItemCompleted:       {},
	ItemSkipped:         {},
}

// CanTransitionItem reports whether from -> to is an allowed item status
// change. SCHEDULED may fall back to READY_FOR_BOOKING when its
// appointment is cancelled.
func CanTransitionItem(from, to string) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TreatmentPlan maps to the treatment_plan table.
type TreatmentPlan struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	PatientCode string    `db:"patient_code" json:"patient_code"`
	Title       string    `db:"title" json:"title"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PlanItem maps to the plan_item table. SequenceNumber orders items within
// the plan; the auto-scheduler processes them in that order.
type PlanItem struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PlanID         uuid.UUID  `db:"plan_id" json:"plan_id"`
	SequenceNumber int        `db:"sequence_number" json:"sequence_number"`
	ServiceCode    string     `db:"service_code" json:"service_code"`
	Status         string     `db:"status" json:"status"`
	ScheduledDate  *time.Time `db:"scheduled_date" json:"scheduled_date,omitempty"`
	AppointmentID  *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
