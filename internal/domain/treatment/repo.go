package treatment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Plans
	CreatePlan(ctx context.Context, plan *TreatmentPlan) error
	GetPlanByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	GetPlanByCode(ctx context.Context, code string) (*TreatmentPlan, error)
	UpdatePlanStatus(ctx context.Context, id uuid.UUID, status string) error
	ListPlansByPatient(ctx context.Context, patientCode string, limit, offset int) ([]*TreatmentPlan, int, error)

	// Items
	CreateItem(ctx context.Context, item *PlanItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*PlanItem, error)
	UpdateItem(ctx context.Context, item *PlanItem) error
	ListItems(ctx context.Context, planID uuid.UUID) ([]*PlanItem, error)
	NextSequenceNumber(ctx context.Context, planID uuid.UUID) (int, error)
}
