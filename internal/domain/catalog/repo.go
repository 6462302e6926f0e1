package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Services
	CreateService(ctx context.Context, svc *DentalService) error
	GetServiceByCode(ctx context.Context, code string) (*DentalService, error)
	UpdateService(ctx context.Context, svc *DentalService) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	ListServices(ctx context.Context, limit, offset int) ([]*DentalService, int, error)

	// Rooms
	CreateRoom(ctx context.Context, room *Room) error
	GetRoomByCode(ctx context.Context, code string) (*Room, error)
	UpdateRoom(ctx context.Context, room *Room) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	ListRooms(ctx context.Context) ([]*Room, error)

	// Staff
	CreateStaff(ctx context.Context, m *StaffMember) error
	GetStaffByCode(ctx context.Context, code string) (*StaffMember, error)
	UpdateStaff(ctx context.Context, m *StaffMember) error
	DeleteStaff(ctx context.Context, id uuid.UUID) error
	ListStaffByRole(ctx context.Context, role string) ([]*StaffMember, error)
	ListStaff(ctx context.Context, limit, offset int) ([]*StaffMember, int, error)
}
