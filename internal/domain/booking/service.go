package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

// reserveAttempts bounds the optimistic retry loop when a computed-free
// slot is taken by a concurrent booking between read and insert.
const reserveAttempts = 3

// Service owns the appointment write path. Computed availability is only a
// hint: the database exclusion constraint decides conflicts, and Reserve
// surfaces the loss as ErrReservationConflict.
type Service struct {
	repo  Repository
	seq   SequenceAllocator
	avail *scheduling.AvailabilityService
	log   zerolog.Logger
}

func NewService(repo Repository, seq SequenceAllocator, avail *scheduling.AvailabilityService, log zerolog.Logger) *Service {
	return &Service{repo: repo, seq: seq, avail: avail, log: log}
}

// ReserveRequest is one booking attempt for a fixed slot.
type ReserveRequest struct {
	PatientCode   string     `json:"patient_code"`
	DoctorCode    string     `json:"doctor_code"`
	RoomCode      string     `json:"room_code"`
	AssistantCode *string    `json:"assistant_code,omitempty"`
	ServiceCodes  []string   `json:"service_codes"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         time.Time  `json:"end_at"`
	PlanItemID    *uuid.UUID `json:"plan_item_id,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

func (r ReserveRequest) validate() error {
	if r.PatientCode == "" {
		return fmt.Errorf("%w: patient_code is required", scheduling.ErrInvalidRequest)
	}
	if r.DoctorCode == "" {
		return fmt.Errorf("%w: doctor_code is required", scheduling.ErrInvalidRequest)
	}
	if r.RoomCode == "" {
		return fmt.Errorf("%w: room_code is required", scheduling.ErrInvalidRequest)
	}
	if len(r.ServiceCodes) == 0 {
		return fmt.Errorf("%w: service_codes must not be empty", scheduling.ErrInvalidRequest)
	}
	if !r.StartAt.Before(r.EndAt) {
		return fmt.Errorf("%w: start_at must precede end_at", scheduling.ErrInvalidRequest)
	}
	return nil
}

// Reserve books the slot. A conflict with a concurrent booking returns
// ErrReservationConflict without retrying.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (*Appointment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	code, err := s.seq.Next(ctx, "appointment")
	if err != nil {
		return nil, err
	}
	appt := &Appointment{
		Code:          code,
		PatientCode:   req.PatientCode,
		DoctorCode:    req.DoctorCode,
		RoomCode:      req.RoomCode,
		AssistantCode: req.AssistantCode,
		ServiceCodes:  req.ServiceCodes,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Status:        StatusBooked,
		PlanItemID:    req.PlanItemID,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment", appt.Code).
		Str("doctor", appt.DoctorCode).
		Str("room", appt.RoomCode).
		Time("start", appt.StartAt).
		Msg("appointment reserved")
	return appt, nil
}

// ReserveNextAvailable recomputes availability and books the suggested
// slot, retrying a bounded number of times when a concurrent booking wins
// the race for the same slot.
func (s *Service) ReserveNextAvailable(ctx context.Context, req ReserveRequest, date time.Time) (*Appointment, error) {
	if s.avail == nil {
		return nil, fmt.Errorf("availability service not configured")
	}

	var lastErr error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		participants := []string{req.RoomCode}
		if req.AssistantCode != nil && *req.AssistantCode != "" {
			participants = append(participants, *req.AssistantCode)
		}
		slots, err := s.avail.AvailableSlots(ctx, scheduling.AvailableTimesRequest{
			Date:             date,
			EmployeeCode:     req.DoctorCode,
			ServiceCodes:     req.ServiceCodes,
			ParticipantCodes: participants,
		})
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			return nil, fmt.Errorf("%w: no free slot on %s",
				scheduling.ErrUnschedulable, date.Format("2006-01-02"))
		}

		req.StartAt = slots[0].Start
		req.EndAt = slots[0].End
		appt, err := s.Reserve(ctx, req)
		if err == nil {
			return appt, nil
		}
		if !errors.Is(err, scheduling.ErrReservationConflict) {
			return nil, err
		}
		lastErr = err
		s.log.Warn().
			Int("attempt", attempt+1).
			Time("slot", req.StartAt).
			Msg("reservation lost race, recomputing availability")
	}
	return nil, lastErr
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Appointment, error) {
	return s.repo.GetByCode(ctx, code)
}

// Transition moves the appointment to a new status, enforcing the
// transition table.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: appointment", scheduling.ErrNotFound)
	}
	if !CanTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: cannot transition %s from %s to %s",
			scheduling.ErrInvalidRequest, appt.Code, appt.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	appt.Status = to
	return appt, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCancelled)
}

func (s *Service) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDate(ctx, scheduling.DateOf(date), limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientCode string, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientCode, limit, offset)
}

// BusyIntervalsFor implements scheduling.BookingStore.
func (s *Service) BusyIntervalsFor(ctx context.Context, ownerCode string, date time.Time) ([]scheduling.BusyInterval, error) {
	return s.repo.BusyIntervalsFor(ctx, ownerCode, scheduling.DateOf(date))
}

// CountForService implements scheduling.BookingStore.
func (s *Service) CountForService(ctx context.Context, serviceCode string, date time.Time) (int, error) {
	return s.repo.CountForService(ctx, serviceCode, scheduling.DateOf(date))
}
