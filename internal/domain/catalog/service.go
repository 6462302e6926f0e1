package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validRoles = map[string]bool{
	RoleDentist:      true,
	RoleAssistant:    true,
	RoleReceptionist: true,
}

func (s *Service) CreateService(ctx context.Context, svc *DentalService) error {
	if svc.Code == "" {
		return fmt.Errorf("code is required")
	}
	if svc.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if svc.BufferMinutes < 0 || svc.MinPreparationDays < 0 || svc.RecoveryDays < 0 ||
		svc.SpacingDays < 0 || svc.MaxPerDay < 0 {
		return fmt.Errorf("scheduling parameters must not be negative")
	}
	svc.Active = true
	return s.repo.CreateService(ctx, svc)
}

func (s *Service) GetService(ctx context.Context, code string) (*DentalService, error) {
	return s.repo.GetServiceByCode(ctx, code)
}

func (s *Service) UpdateService(ctx context.Context, svc *DentalService) error {
	if svc.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	return s.repo.UpdateService(ctx, svc)
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteService(ctx, id)
}

func (s *Service) ListServices(ctx context.Context, limit, offset int) ([]*DentalService, int, error) {
	return s.repo.ListServices(ctx, limit, offset)
}

func (s *Service) CreateRoom(ctx context.Context, room *Room) error {
	if room.Code == "" {
		return fmt.Errorf("code is required")
	}
	if room.RoomType == "" {
		return fmt.Errorf("room_type is required")
	}
	room.Active = true
	return s.repo.CreateRoom(ctx, room)
}

func (s *Service) GetRoom(ctx context.Context, code string) (*Room, error) {
	return s.repo.GetRoomByCode(ctx, code)
}

func (s *Service) UpdateRoom(ctx context.Context, room *Room) error {
	return s.repo.UpdateRoom(ctx, room)
}

func (s *Service) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRoom(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context) ([]*Room, error) {
	return s.repo.ListRooms(ctx)
}

func (s *Service) CreateStaff(ctx context.Context, m *StaffMember) error {
	if m.Code == "" {
		return fmt.Errorf("code is required")
	}
	if m.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if !validRoles[m.Role] {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	m.Active = true
	return s.repo.CreateStaff(ctx, m)
}

func (s *Service) GetStaff(ctx context.Context, code string) (*StaffMember, error) {
	return s.repo.GetStaffByCode(ctx, code)
}

func (s *Service) UpdateStaff(ctx context.Context, m *StaffMember) error {
	if m.Role != "" && !validRoles[m.Role] {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	return s.repo.UpdateStaff(ctx, m)
}

func (s *Service) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteStaff(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context, limit, offset int) ([]*StaffMember, int, error) {
	return s.repo.ListStaff(ctx, limit, offset)
}

// SchedulingCatalog adapts the catalog repository to the read interface the
// availability and auto-scheduling operations consume.
type SchedulingCatalog struct {
	repo Repository
}

func NewSchedulingCatalog(repo Repository) *SchedulingCatalog {
	return &SchedulingCatalog{repo: repo}
}

func (c *SchedulingCatalog) Service(ctx context.Context, code string) (*scheduling.ServiceRequirement, error) {
	svc, err := c.repo.GetServiceByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: service %s", scheduling.ErrNotFound, code)
	}
	if !svc.Active {
		return nil, fmt.Errorf("%w: service %s is inactive", scheduling.ErrNotFound, code)
	}
	return svc.Requirement(), nil
}

func (c *SchedulingCatalog) Rooms(ctx context.Context) ([]scheduling.RoomInfo, error) {
	rooms, err := c.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]scheduling.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	return infos, nil
}

func (c *SchedulingCatalog) Doctors(ctx context.Context) ([]scheduling.StaffInfo, error) {
	return c.staffInfos(ctx, RoleDentist)
}

func (c *SchedulingCatalog) Assistants(ctx context.Context) ([]scheduling.StaffInfo, error) {
	return c.staffInfos(ctx, RoleAssistant)
}

func (c *SchedulingCatalog) staffInfos(ctx context.Context, role string) ([]scheduling.StaffInfo, error) {
	staff, err := c.repo.ListStaffByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	infos := make([]scheduling.StaffInfo, 0, len(staff))
	for _, m := range staff {
		infos = append(infos, m.Info())
	}
	return infos, nil
}
