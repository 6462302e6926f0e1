package treatment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

// SequenceAllocator issues plan codes. Satisfied by the booking package's
// Postgres-backed allocator.
type SequenceAllocator interface {
	Next(ctx context.Context, kind string) (string, error)
}

type Service struct {
	repo Repository
	seq  SequenceAllocator
	log  zerolog.Logger
}

func NewService(repo Repository, seq SequenceAllocator, log zerolog.Logger) *Service {
	return &Service{repo: repo, seq: seq, log: log}
}

func (s *Service) CreatePlan(ctx context.Context, plan *TreatmentPlan) error {
	if plan.PatientCode == "" {
		return fmt.Errorf("%w: patient_code is required", scheduling.ErrInvalidRequest)
	}
	if plan.Title == "" {
		return fmt.Errorf("%w: title is required", scheduling.ErrInvalidRequest)
	}
	code, err := s.seq.Next(ctx, "plan")
	if err != nil {
		return err
	}
	plan.Code = code
	plan.Status = PlanDraft
	return s.repo.CreatePlan(ctx, plan)
}

func (s *Service) GetPlan(ctx context.Context, code string) (*TreatmentPlan, error) {
	plan, err := s.repo.GetPlanByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: plan %s", scheduling.ErrNotFound, code)
	}
	return plan, nil
}

// TransitionPlan moves the plan to a new status per the transition table.
func (s *Service) TransitionPlan(ctx context.Context, code, to string) (*TreatmentPlan, error) {
	plan, err := s.GetPlan(ctx, code)
	if err != nil {
		return nil, err
	}
	if !CanTransitionPlan(plan.Status, to) {
		return nil, fmt.Errorf("%w: cannot transition plan %s from %s to %s",
			scheduling.ErrInvalidRequest, plan.Code, plan.Status, to)
	}
	if err := s.repo.UpdatePlanStatus(ctx, plan.ID, to); err != nil {
		return nil, err
	}
	plan.Status = to
	return plan, nil
}

func (s *Service) ListPlansByPatient(ctx context.Context, patientCode string, limit, offset int) ([]*TreatmentPlan, int, error) {
	return s.repo.ListPlansByPatient(ctx, patientCode, limit, offset)
}

// AddItem appends a service to the plan, taking the next sequence number.
// Items can only be added while the plan is a draft.
func (s *Service) AddItem(ctx context.Context, planCode string, item *PlanItem) error {
	plan, err := s.GetPlan(ctx, planCode)
	if err != nil {
		return err
	}
	if plan.Status != PlanDraft {
		return fmt.Errorf("%w: plan %s is %s, items can only be added to a draft",
			scheduling.ErrInvalidRequest, plan.Code, plan.Status)
	}
	if item.ServiceCode == "" {
		return fmt.Errorf("%w: service_code is required", scheduling.ErrInvalidRequest)
	}
	seq, err := s.repo.NextSequenceNumber(ctx, plan.ID)
	if err != nil {
		return err
	}
	item.PlanID = plan.ID
	item.SequenceNumber = seq
	item.Status = ItemPending
	return s.repo.CreateItem(ctx, item)
}

func (s *Service) ListItems(ctx context.Context, planCode string) ([]*PlanItem, error) {
	plan, err := s.GetPlan(ctx, planCode)
	if err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, plan.ID)
}

// TransitionItem moves one item to a new status per the transition table.
func (s *Service) TransitionItem(ctx context.Context, itemID uuid.UUID, to string) (*PlanItem, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: plan item", scheduling.ErrNotFound)
	}
	if !CanTransitionItem(item.Status, to) {
		return nil, fmt.Errorf("%w: cannot transition item from %s to %s",
			scheduling.ErrInvalidRequest, item.Status, to)
	}
	item.Status = to
	if to != ItemScheduled {
		item.ScheduledDate = nil
		item.AppointmentID = nil
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ItemsToSchedule implements the auto-scheduler's plan source: every item
// awaiting booking on an active plan, in sequence order.
func (s *Service) ItemsToSchedule(ctx context.Context, planCode string) ([]scheduling.PlanItemView, error) {
	plan, err := s.GetPlan(ctx, planCode)
	if err != nil {
		return nil, err
	}
	if plan.Status != PlanActive {
		return nil, fmt.Errorf("%w: plan %s is %s, only active plans can be scheduled",
			scheduling.ErrInvalidRequest, plan.Code, plan.Status)
	}
	items, err := s.repo.ListItems(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	var views []scheduling.PlanItemView
	for _, item := range items {
		if item.Status != ItemReadyForBooking {
			continue
		}
		views = append(views, scheduling.PlanItemView{
			ItemID:         item.ID.String(),
			SequenceNumber: item.SequenceNumber,
			ServiceCode:    item.ServiceCode,
		})
	}
	return views, nil
}

// ApplyResults marks successfully placed items SCHEDULED with their
// assigned date. Failed items keep their status for a later run.
func (s *Service) ApplyResults(ctx context.Context, planCode string, results []scheduling.ScheduleResult) error {
	for _, res := range results {
		if !res.Scheduled() {
			s.log.Warn().
				Str("plan", planCode).
				Str("item", res.PlanItemID).
				Str("reason", res.FailureReason).
				Msg("plan item left unscheduled")
			continue
		}
		itemID, err := uuid.Parse(res.PlanItemID)
		if err != nil {
			return fmt.Errorf("bad plan item id %q: %w", res.PlanItemID, err)
		}
		item, err := s.repo.GetItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("%w: plan item %s", scheduling.ErrNotFound, res.PlanItemID)
		}
		date, err := time.Parse("2006-01-02", res.AssignedDate)
		if err != nil {
			return fmt.Errorf("bad assigned date %q: %w", res.AssignedDate, err)
		}
		item.Status = ItemScheduled
		item.ScheduledDate = &date
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
