package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// AvailabilityService orchestrates resource filter -> interval engine ->
// slot generator for single-date queries. All operations are pure reads of
// the injected snapshots and safe to run concurrently.
type AvailabilityService struct {
	calendar CalendarAuthority
	shifts   ShiftCatalog
	bookings BookingStore
	catalog  Catalog
	log      zerolog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewAvailabilityService wires the collaborator snapshots together.
func NewAvailabilityService(cal CalendarAuthority, shifts ShiftCatalog, bookings BookingStore, catalog Catalog, log zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		calendar: cal,
		shifts:   shifts,
		bookings: bookings,
		catalog:  catalog,
		log:      log,
		now:      time.Now,
	}
}

// requirements resolves every requested service code, failing with
// ErrNotFound on the first unknown code.
func (s *AvailabilityService) requirements(ctx context.Context, serviceCodes []string) ([]*ServiceRequirement, error) {
	reqs := make([]*ServiceRequirement, 0, len(serviceCodes))
	for _, code := range serviceCodes {
		req, err := s.catalog.Service(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: service %s", ErrNotFound, code)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// TotalDuration sums service durations plus buffers, in minutes.
func TotalDuration(reqs []*ServiceRequirement) int {
	total := 0
	for _, r := range reqs {
		total += r.DurationMinutes + r.BufferMinutes
	}
	return total
}

// AvailableDoctors returns the doctors holding every specialization the
// requested services mandate and having at least one shift on the date. An
// empty result means nothing is available, not that the request failed.
func (s *AvailabilityService) AvailableDoctors(ctx context.Context, date time.Time, serviceCodes []string) ([]AvailableDoctorDTO, error) {
	if len(serviceCodes) == 0 {
		return nil, fmt.Errorf("%w: service_codes must not be empty", ErrInvalidRequest)
	}
	if DateOf(date).Before(DateOf(s.now())) {
		return nil, fmt.Errorf("%w: date is in the past", ErrInvalidRequest)
	}
	reqs, err := s.requirements(ctx, serviceCodes)
	if err != nil {
		return nil, err
	}
	doctors, err := s.catalog.Doctors(ctx)
	if err != nil {
		return nil, err
	}

	var out []AvailableDoctorDTO
	for _, d := range QualifiedDoctors(reqs, doctors) {
		shifts, err := s.shifts.ShiftsFor(ctx, d.EmployeeCode, date)
		if err != nil {
			return nil, err
		}
		if len(shifts) == 0 {
			continue
		}
		dto := AvailableDoctorDTO{
			EmployeeCode:    d.EmployeeCode,
			FullName:        d.FullName,
			Specializations: d.SpecializationIDs,
		}
		for _, sh := range shifts {
			dto.ShiftTimes = append(dto.ShiftTimes,
				sh.Start.Format("15:04")+"-"+sh.End.Format("15:04"))
		}
		out = append(out, dto)
	}
	return out, nil
}

// AvailableSlots computes the bookable slots on req.Date where the doctor
// and every named participant are simultaneously free, sliced to the total
// duration of the requested services.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, req AvailableTimesRequest) ([]TimeSlot, error) {
	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}
	reqs, err := s.requirements(ctx, req.ServiceCodes)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupDoctor(ctx, req.EmployeeCode); err != nil {
		return nil, err
	}

	owners := append([]string{req.EmployeeCode}, req.ParticipantCodes...)
	shiftsByOwner := make(map[string][]WorkingShift, len(owners))
	busyByOwner := make(map[string][]BusyInterval, len(owners))
	for _, owner := range owners {
		shifts, err := s.shifts.ShiftsFor(ctx, owner, req.Date)
		if err != nil {
			return nil, err
		}
		busy, err := s.bookings.BusyIntervalsFor(ctx, owner, req.Date)
		if err != nil {
			return nil, err
		}
		shiftsByOwner[owner] = shifts
		busyByOwner[owner] = busy
	}

	windows := FreeWindows(shiftsByOwner, busyByOwner)
	slots := SliceSlots(windows, TotalDuration(reqs))
	s.log.Debug().
		Str("doctor", req.EmployeeCode).
		Str("date", req.Date.Format("2006-01-02")).
		Int("windows", len(windows)).
		Int("slots", len(slots)).
		Msg("availability computed")
	return slots, nil
}

// AvailableResources lists the rooms compatible with the requested services
// and the qualified assistants that are free for the whole [start, end)
// range on the given date.
func (s *AvailabilityService) AvailableResources(ctx context.Context, date, start, end time.Time, serviceCodes []string) (*AvailableResourcesDTO, error) {
	if len(serviceCodes) == 0 {
		return nil, fmt.Errorf("%w: service_codes must not be empty", ErrInvalidRequest)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start must precede end", ErrInvalidRequest)
	}
	if DateOf(date).Before(DateOf(s.now())) {
		return nil, fmt.Errorf("%w: date is in the past", ErrInvalidRequest)
	}
	reqs, err := s.requirements(ctx, serviceCodes)
	if err != nil {
		return nil, err
	}

	out := &AvailableResourcesDTO{}

	rooms, err := s.catalog.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	for _, room := range CompatibleRooms(serviceCodes, rooms) {
		free, err := s.freeInRange(ctx, room.RoomCode, date, start, end)
		if err != nil {
			return nil, err
		}
		if free {
			out.AvailableRooms = append(out.AvailableRooms, room.RoomCode)
		}
	}

	assistants, err := s.catalog.Assistants(ctx)
	if err != nil {
		return nil, err
	}
	// An assistant must hold the specialization of every requested
	// service, not just one of them.
	qualified := QualifiedAssistants(0, assistants)
	for _, r := range reqs {
		if r.RequiredSpecializationID != 0 {
			qualified = QualifiedAssistants(r.RequiredSpecializationID, qualified)
		}
	}
	for _, a := range qualified {
		free, err := s.freeInRange(ctx, a.EmployeeCode, date, start, end)
		if err != nil {
			return nil, err
		}
		if free {
			out.AvailableAssistants = append(out.AvailableAssistants, a.EmployeeCode)
		}
	}
	return out, nil
}

// freeInRange is the interval engine's degenerate single-window case: the
// owner is free iff the intersection of their free windows with [start, end)
// covers the whole range.
func (s *AvailabilityService) freeInRange(ctx context.Context, ownerCode string, date, start, end time.Time) (bool, error) {
	shifts, err := s.shifts.ShiftsFor(ctx, ownerCode, date)
	if err != nil {
		return false, err
	}
	busy, err := s.bookings.BusyIntervalsFor(ctx, ownerCode, date)
	if err != nil {
		return false, err
	}
	free := SubtractBusy(shifts, busy)
	fixed := []TimeWindow{{Start: start, End: end}}
	for _, w := range IntersectWindows(free, fixed) {
		if !w.Start.After(start) && !w.End.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *AvailabilityService) lookupDoctor(ctx context.Context, employeeCode string) (*StaffInfo, error) {
	doctors, err := s.catalog.Doctors(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].EmployeeCode == employeeCode {
			return &doctors[i], nil
		}
	}
	return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, employeeCode)
}
