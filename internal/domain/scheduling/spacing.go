package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SpacingPolicy computes the earliest date a plan item may be booked.
//
// Rule precedence (all lower bounds apply; result is their maximum):
//  1. today + MinPreparationDays
//  2. previous item's completion date + its RecoveryDays
//  3. most recent same-service date + SpacingDays
//  4. skip holidays and weekends
//  5. skip dates where the service's per-day booking cap is reached
//
// ForceSchedule bypasses rules 1-3 (logged). Rules 4-5 reflect physical
// clinic closure and admission control and are never bypassed.
type SpacingPolicy struct {
	calendar CalendarAuthority
	bookings BookingStore
	log      zerolog.Logger
}

// NewSpacingPolicy builds a policy over the calendar and booking snapshots.
func NewSpacingPolicy(cal CalendarAuthority, bookings BookingStore, log zerolog.Logger) *SpacingPolicy {
	return &SpacingPolicy{calendar: cal, bookings: bookings, log: log}
}

// SpacingInput carries the per-item state the policy needs. Dates are
// calendar dates; nil means "no prior constraint of that kind".
type SpacingInput struct {
	Service             *ServiceRequirement
	Today               time.Time
	PriorCompletionDate *time.Time // previous item in the same phase
	LastSameServiceDate *time.Time // most recent repeat of this service in the plan
	// ExtraCountByDate holds same-run tentative assignments not yet visible
	// in the booking store, keyed by YYYY-MM-DD.
	ExtraCountByDate map[string]int
	LookAheadDays    int
	ForceSchedule    bool
}

// EarliestDate returns the first date satisfying every applicable rule, or
// ErrUnschedulable when no date within the look-ahead horizon qualifies.
func (p *SpacingPolicy) EarliestDate(ctx context.Context, in SpacingInput) (time.Time, error) {
	if in.Service == nil {
		return time.Time{}, fmt.Errorf("%w: service requirement is required", ErrInvalidRequest)
	}
	lookAhead := in.LookAheadDays
	if lookAhead <= 0 {
		lookAhead = DefaultLookAheadDays
	}
	today := DateOf(in.Today)
	horizon := today.AddDate(0, 0, lookAhead)

	candidate := today
	if !in.ForceSchedule {
		if d := today.AddDate(0, 0, in.Service.MinPreparationDays); d.After(candidate) {
			candidate = d
		}
		if in.PriorCompletionDate != nil {
			if d := DateOf(*in.PriorCompletionDate).AddDate(0, 0, in.Service.RecoveryDays); d.After(candidate) {
				candidate = d
			}
		}
		if in.LastSameServiceDate != nil {
			if d := DateOf(*in.LastSameServiceDate).AddDate(0, 0, in.Service.SpacingDays); d.After(candidate) {
				candidate = d
			}
		}
	} else {
		p.log.Warn().
			Str("service", in.Service.ServiceCode).
			Msg("force schedule: preparation, recovery and spacing rules bypassed")
	}

	for ; !candidate.After(horizon); candidate = candidate.AddDate(0, 0, 1) {
		ok, err := p.DateAdmissible(ctx, in.Service, candidate, in.ExtraCountByDate)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: no admissible date for %s before %s",
		ErrUnschedulable, in.Service.ServiceCode, horizon.Format("2006-01-02"))
}

// DateAdmissible checks the non-bypassable rules for one candidate date:
// clinic closure (holiday/weekend) and the service's daily booking cap.
func (p *SpacingPolicy) DateAdmissible(ctx context.Context, svc *ServiceRequirement, date time.Time, extraByDate map[string]int) (bool, error) {
	if IsWeekend(date) {
		return false, nil
	}
	holiday, err := p.calendar.IsHoliday(ctx, date)
	if err != nil {
		return false, err
	}
	if holiday {
		return false, nil
	}
	if svc.MaxPerDay > 0 {
		count, err := p.bookings.CountForService(ctx, svc.ServiceCode, date)
		if err != nil {
			return false, err
		}
		count += extraByDate[date.Format("2006-01-02")]
		if count >= svc.MaxPerDay {
			return false, nil
		}
	}
	return true, nil
}
