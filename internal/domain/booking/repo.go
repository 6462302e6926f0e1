package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetByCode(ctx context.Context, code string) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientCode string, limit, offset int) ([]*Appointment, int, error)

	// Read models for availability computation.
	BusyIntervalsFor(ctx context.Context, ownerCode string, date time.Time) ([]scheduling.BusyInterval, error)
	CountForService(ctx context.Context, serviceCode string, date time.Time) (int, error)
}

// SequenceAllocator hands out monotonically increasing appointment codes.
type SequenceAllocator interface {
	Next(ctx context.Context, kind string) (string, error)
}
