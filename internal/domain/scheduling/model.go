package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the availability and auto-scheduling operations.
// Structural problems (bad input, unknown codes) fail the request; an empty
// availability result is data, never an error.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrNotFound            = errors.New("not found")
	ErrUnschedulable       = errors.New("unschedulable within look-ahead horizon")
	ErrReservationConflict = errors.New("reservation conflict")
)

// WorkingShift is one contiguous availability window for a doctor, assistant
// or room on a single calendar date. A resource may have several shifts per
// day (split morning/afternoon rosters).
type WorkingShift struct {
	OwnerCode string    `json:"owner_code"`
	Date      time.Time `json:"date"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// BusyInterval is an existing commitment blocking a resource. Read-only to
// this package; derived from booking records.
type BusyInterval struct {
	OwnerCode string    `json:"owner_code"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// TimeWindow is a free time range common to every resource under
// consideration.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// TimeSlot is a fixed-duration bookable sub-range of a free window. Exactly
// one slot per result set carries Suggested=true (the earliest) whenever the
// set is non-empty.
type TimeSlot struct {
	Start     time.Time
	End       time.Time
	Suggested bool
}

// TimeSlotDTO is the wire shape of a TimeSlot, HH:MM:SS granularity.
type TimeSlotDTO struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Suggested bool   `json:"suggested"`
}

// DTO converts a slot to its wire representation.
func (s TimeSlot) DTO() TimeSlotDTO {
	return TimeSlotDTO{
		Start:     s.Start.Format("15:04:05"),
		End:       s.End.Format("15:04:05"),
		Suggested: s.Suggested,
	}
}

// ServiceRequirement is the scheduling-relevant metadata of one dental
// service. Invariants: DurationMinutes > 0, BufferMinutes >= 0, all day
// counts >= 0.
type ServiceRequirement struct {
	ServiceCode              string   `json:"service_code"`
	DurationMinutes          int      `json:"duration_minutes"`
	BufferMinutes            int      `json:"buffer_minutes"`
	RequiredSpecializationID int      `json:"required_specialization_id,omitempty"`
	CompatibleRoomTypes      []string `json:"compatible_room_types"`
	MinPreparationDays       int      `json:"min_preparation_days"`
	RecoveryDays             int      `json:"recovery_days"`
	SpacingDays              int      `json:"spacing_days"`
	MaxPerDay                int      `json:"max_per_day"`
}

// RoomInfo is the room-catalog snapshot the resource filter works on.
type RoomInfo struct {
	RoomCode              string   `json:"room_code"`
	Name                  string   `json:"name"`
	RoomType              string   `json:"room_type"`
	SupportedServiceCodes []string `json:"supported_service_codes"`
}

// StaffInfo is the staff-catalog snapshot the resource filter works on.
// SpecializationIDs always includes the baseline medical-staff qualification
// for clinical personnel.
type StaffInfo struct {
	EmployeeCode      string `json:"employee_code"`
	FullName          string `json:"full_name"`
	SpecializationIDs []int  `json:"specialization_ids"`
}

// HasSpecialization reports whether the staff member holds the given
// specialization.
func (s StaffInfo) HasSpecialization(id int) bool {
	for _, sp := range s.SpecializationIDs {
		if sp == id {
			return true
		}
	}
	return false
}

// AvailableTimesRequest asks for bookable slots for one doctor on one date.
type AvailableTimesRequest struct {
	Date             time.Time `json:"date"`
	EmployeeCode     string    `json:"employee_code"`
	ServiceCodes     []string  `json:"service_codes"`
	ParticipantCodes []string  `json:"participant_codes"`
}

// Validate rejects malformed requests before any computation runs.
func (r AvailableTimesRequest) Validate(today time.Time) error {
	if r.EmployeeCode == "" {
		return fmt.Errorf("%w: employee_code is required", ErrInvalidRequest)
	}
	if len(r.ServiceCodes) == 0 {
		return fmt.Errorf("%w: service_codes must not be empty", ErrInvalidRequest)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}
	if DateOf(r.Date).Before(DateOf(today)) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidRequest)
	}
	return nil
}

// AvailableDoctorDTO describes a doctor qualified for the requested services
// who has at least one shift on the queried date.
type AvailableDoctorDTO struct {
	EmployeeCode    string   `json:"employee_code"`
	FullName        string   `json:"full_name"`
	Specializations []int    `json:"specializations"`
	ShiftTimes      []string `json:"shift_times"` // "HH:MM-HH:MM"
}

// AvailableResourcesDTO lists rooms and assistants free in a fixed range.
type AvailableResourcesDTO struct {
	AvailableRooms      []string `json:"available_rooms"`
	AvailableAssistants []string `json:"available_assistants"`
}

// Preferred time-slot buckets for auto-scheduling.
const (
	BucketMorning   = "MORNING"   // start before 12:00
	BucketAfternoon = "AFTERNOON" // start in [12:00, 17:00)
	BucketEvening   = "EVENING"   // start at or after 17:00
)

// InBucket reports whether t's clock time falls in the named bucket. Unknown
// bucket names match nothing.
func InBucket(t time.Time, bucket string) bool {
	h := t.Hour()
	switch bucket {
	case BucketMorning:
		return h < 12
	case BucketAfternoon:
		return h >= 12 && h < 17
	case BucketEvening:
		return h >= 17
	}
	return false
}

// PlanItemView is the read model of a treatment-plan item the auto-scheduler
// consumes. Items are processed in SequenceNumber order.
type PlanItemView struct {
	ItemID         string `json:"item_id"`
	SequenceNumber int    `json:"sequence_number"`
	ServiceCode    string `json:"service_code"`
}

// AutoScheduleRequest configures one auto-scheduling run over a plan.
type AutoScheduleRequest struct {
	EmployeeCode       string   `json:"employee_code,omitempty"`
	RoomCode           string   `json:"room_code,omitempty"`
	PreferredTimeSlots []string `json:"preferred_time_slots,omitempty"`
	LookAheadDays      int      `json:"look_ahead_days"`
	ForceSchedule      bool     `json:"force_schedule"`
	StopOnFailure      bool     `json:"stop_on_failure"`
}

// DefaultLookAheadDays bounds the auto-scheduler search when the caller does
// not say otherwise.
const DefaultLookAheadDays = 90

// Failure reasons reported per plan item.
const (
	ReasonNoSlotWithinHorizon = "NO_SLOT_WITHIN_HORIZON"
	ReasonUnknownService      = "UNKNOWN_SERVICE"
	ReasonSkippedAfterFailure = "SKIPPED_AFTER_FAILURE"
)

// ScheduleResult is the outcome for one plan item: either an assignment or a
// failure reason, never both.
type ScheduleResult struct {
	PlanItemID    string       `json:"plan_item_id"`
	ServiceCode   string       `json:"service_code"`
	AssignedDate  string       `json:"assigned_date,omitempty"` // YYYY-MM-DD
	AssignedSlot  *TimeSlotDTO `json:"assigned_slot,omitempty"`
	DoctorCode    string       `json:"doctor_code,omitempty"`
	RoomCode      string       `json:"room_code,omitempty"`
	AssistantCode string       `json:"assistant_code,omitempty"`
	FailureReason string       `json:"failure_reason,omitempty"`
}

// Scheduled reports whether the item received an assignment.
func (r ScheduleResult) Scheduled() bool { return r.FailureReason == "" }

// DateOf truncates t to its calendar date, preserving location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// At combines a calendar date with a clock time on that date.
func At(date time.Time, hour, min int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location())
}
