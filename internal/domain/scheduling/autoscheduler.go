package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// AutoScheduler places an ordered list of treatment-plan items on the
// earliest compliant date and slot. The search is sequential per plan: each
// item's lower bound derives from the previous item's *assigned* date.
// Independent plans may run concurrently; the scheduler holds no shared
// mutable state.
type AutoScheduler struct {
	avail   *AvailabilityService
	policy  *SpacingPolicy
	catalog Catalog
	log     zerolog.Logger
	now     func() time.Time
}

// NewAutoScheduler wires the availability service and spacing policy.
func NewAutoScheduler(avail *AvailabilityService, policy *SpacingPolicy, catalog Catalog, log zerolog.Logger) *AutoScheduler {
	return &AutoScheduler{avail: avail, policy: policy, catalog: catalog, log: log, now: time.Now}
}

// Run schedules every item and returns one ScheduleResult per item. Items
// that cannot be placed within the look-ahead horizon are reported as
// failures; the run continues unless StopOnFailure is set. Only errors in
// the collaborators themselves (snapshot lookups) abort the whole run.
func (a *AutoScheduler) Run(ctx context.Context, items []PlanItemView, req AutoScheduleRequest) ([]ScheduleResult, error) {
	lookAhead := req.LookAheadDays
	if lookAhead <= 0 {
		lookAhead = DefaultLookAheadDays
	}
	today := DateOf(a.now())
	horizon := today.AddDate(0, 0, lookAhead)

	ordered := make([]PlanItemView, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})

	var (
		results         = make([]ScheduleResult, 0, len(ordered))
		priorAssigned   *time.Time
		lastSameService = map[string]time.Time{}
		extraByDate     = map[string]map[string]int{} // date -> service -> count
		halted          bool
	)

	for _, item := range ordered {
		if halted {
			results = append(results, ScheduleResult{
				PlanItemID:    item.ItemID,
				ServiceCode:   item.ServiceCode,
				FailureReason: ReasonSkippedAfterFailure,
			})
			continue
		}

		svc, err := a.catalog.Service(ctx, item.ServiceCode)
		if err != nil {
			results = append(results, ScheduleResult{
				PlanItemID:    item.ItemID,
				ServiceCode:   item.ServiceCode,
				FailureReason: ReasonUnknownService,
			})
			if req.StopOnFailure {
				halted = true
			}
			continue
		}

		in := SpacingInput{
			Service:             svc,
			Today:               today,
			PriorCompletionDate: priorAssigned,
			ExtraCountByDate:    serviceExtra(extraByDate, item.ServiceCode),
			LookAheadDays:       lookAhead,
			ForceSchedule:       req.ForceSchedule,
		}
		if last, ok := lastSameService[item.ServiceCode]; ok {
			d := last
			in.LastSameServiceDate = &d
		}

		result := ScheduleResult{PlanItemID: item.ItemID, ServiceCode: item.ServiceCode}
		earliest, err := a.policy.EarliestDate(ctx, in)
		if err != nil && !errors.Is(err, ErrUnschedulable) {
			return nil, err
		}
		if err == nil {
			assigned, aerr := a.placeItem(ctx, svc, earliest, horizon, req, serviceExtra(extraByDate, item.ServiceCode))
			if aerr != nil {
				return nil, aerr
			}
			if assigned != nil {
				result.AssignedDate = assigned.date.Format("2006-01-02")
				dto := assigned.slot.DTO()
				result.AssignedSlot = &dto
				result.DoctorCode = assigned.doctorCode
				result.RoomCode = assigned.roomCode
				result.AssistantCode = assigned.assistantCode

				d := assigned.date
				priorAssigned = &d
				lastSameService[item.ServiceCode] = d
				bump(extraByDate, d, item.ServiceCode)

				a.log.Info().
					Str("item", item.ItemID).
					Str("service", item.ServiceCode).
					Str("date", result.AssignedDate).
					Str("doctor", result.DoctorCode).
					Str("room", result.RoomCode).
					Str("assistant", result.AssistantCode).
					Msg("plan item scheduled")
			} else {
				result.FailureReason = ReasonNoSlotWithinHorizon
			}
		} else {
			result.FailureReason = ReasonNoSlotWithinHorizon
		}

		if !result.Scheduled() {
			a.log.Warn().
				Str("item", item.ItemID).
				Str("service", item.ServiceCode).
				Str("reason", result.FailureReason).
				Msg("plan item not scheduled")
			if req.StopOnFailure {
				halted = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// assignment is one placed item: date, slot and the resources it binds.
type assignment struct {
	date          time.Time
	slot          TimeSlot
	doctorCode    string
	roomCode      string
	assistantCode string
}

// placeItem advances day by day from earliest to the horizon and returns
// the first (date, slot, doctor, room, assistant) combination that
// satisfies the request's preferences, or nil when the horizon is
// exhausted. The assistant dimension only exists when the service mandates
// a specialization; the assistant then occupies the slot like any owner.
func (a *AutoScheduler) placeItem(ctx context.Context, svc *ServiceRequirement, earliest, horizon time.Time, req AutoScheduleRequest, extra map[string]int) (*assignment, error) {
	assistants, err := a.candidateAssistants(ctx, svc)
	if err != nil {
		return nil, err
	}

	for date := earliest; !date.After(horizon); date = date.AddDate(0, 0, 1) {
		ok, err := a.policy.DateAdmissible(ctx, svc, date, extra)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		doctors, err := a.candidateDoctors(ctx, date, svc, req.EmployeeCode)
		if err != nil {
			return nil, err
		}
		rooms, err := a.candidateRooms(ctx, svc, req.RoomCode)
		if err != nil {
			return nil, err
		}

		var best *assignment
		for _, doctor := range doctors {
			for _, room := range rooms {
				for _, assistant := range assistants {
					participants := []string{room}
					if assistant != "" {
						participants = append(participants, assistant)
					}
					slots, err := a.avail.AvailableSlots(ctx, AvailableTimesRequest{
						Date:             date,
						EmployeeCode:     doctor,
						ServiceCodes:     []string{svc.ServiceCode},
						ParticipantCodes: participants,
					})
					if err != nil {
						return nil, err
					}
					for _, slot := range slots {
						if !matchesBuckets(slot.Start, req.PreferredTimeSlots) {
							continue
						}
						if best == nil || slot.Start.Before(best.slot.Start) {
							best = &assignment{date: date, slot: slot, doctorCode: doctor, roomCode: room, assistantCode: assistant}
						}
						break // slots are sorted; first match is earliest for this combination
					}
				}
			}
		}
		if best != nil {
			best.slot.Suggested = true
			return best, nil
		}
	}
	return nil, nil
}

// candidateAssistants returns the assistants qualified for the service's
// required specialization. A service without one binds no assistant; the
// single empty code keeps the search loop over one combination.
func (a *AutoScheduler) candidateAssistants(ctx context.Context, svc *ServiceRequirement) ([]string, error) {
	if svc.RequiredSpecializationID == 0 {
		return []string{""}, nil
	}
	staff, err := a.catalog.Assistants(ctx)
	if err != nil {
		return nil, err
	}
	qualified := QualifiedAssistants(svc.RequiredSpecializationID, staff)
	codes := make([]string, 0, len(qualified))
	for _, s := range qualified {
		codes = append(codes, s.EmployeeCode)
	}
	return codes, nil
}

// candidateDoctors returns the preferred doctor when set, otherwise every
// qualified doctor with a shift on the date.
func (a *AutoScheduler) candidateDoctors(ctx context.Context, date time.Time, svc *ServiceRequirement, preferred string) ([]string, error) {
	if preferred != "" {
		return []string{preferred}, nil
	}
	dtos, err := a.avail.AvailableDoctors(ctx, date, []string{svc.ServiceCode})
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(dtos))
	for _, d := range dtos {
		codes = append(codes, d.EmployeeCode)
	}
	return codes, nil
}

// candidateRooms returns the preferred room when set, otherwise every room
// compatible with the service.
func (a *AutoScheduler) candidateRooms(ctx context.Context, svc *ServiceRequirement, preferred string) ([]string, error) {
	if preferred != "" {
		return []string{preferred}, nil
	}
	rooms, err := a.catalog.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	compatible := CompatibleRooms([]string{svc.ServiceCode}, rooms)
	codes := make([]string, 0, len(compatible))
	for _, r := range compatible {
		codes = append(codes, r.RoomCode)
	}
	return codes, nil
}

func matchesBuckets(start time.Time, buckets []string) bool {
	if len(buckets) == 0 {
		return true
	}
	for _, b := range buckets {
		if InBucket(start, b) {
			return true
		}
	}
	return false
}

func serviceExtra(extraByDate map[string]map[string]int, serviceCode string) map[string]int {
	out := map[string]int{}
	for date, byService := range extraByDate {
		if n := byService[serviceCode]; n > 0 {
			out[date] = n
		}
	}
	return out
}

func bump(extraByDate map[string]map[string]int, date time.Time, serviceCode string) {
	key := date.Format("2006-01-02")
	if extraByDate[key] == nil {
		extraByDate[key] = map[string]int{}
	}
	extraByDate[key][serviceCode]++
}
