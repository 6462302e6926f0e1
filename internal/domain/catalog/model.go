package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/novadent/clinic-api/internal/domain/scheduling"
)

// DentalService maps to the dental_service table. Scheduling parameters
// (preparation, recovery, spacing, daily cap) live here so the catalog is
// the single source of booking rules per service.
type DentalService struct {
	ID                       uuid.UUID `db:"id" json:"id"`
	Code                     string    `db:"code" json:"code"`
	Name                     string    `db:"name" json:"name"`
	DurationMinutes          int       `db:"duration_minutes" json:"duration_minutes"`
	BufferMinutes            int       `db:"buffer_minutes" json:"buffer_minutes"`
	PriceCents               int64     `db:"price_cents" json:"price_cents"`
	RequiredSpecializationID *int      `db:"required_specialization_id" json:"required_specialization_id,omitempty"`
	CompatibleRoomTypes      []string  `db:"compatible_room_types" json:"compatible_room_types"`
	MinPreparationDays       int       `db:"min_preparation_days" json:"min_preparation_days"`
	RecoveryDays             int       `db:"recovery_days" json:"recovery_days"`
	SpacingDays              int       `db:"spacing_days" json:"spacing_days"`
	MaxPerDay                int       `db:"max_per_day" json:"max_per_day"`
	Active                   bool      `db:"active" json:"active"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// Requirement projects the service onto its scheduling view.
func (s *DentalService) Requirement() *scheduling.ServiceRequirement {
	specID := 0
	if s.RequiredSpecializationID != nil {
		specID = *s.RequiredSpecializationID
	}
	return &scheduling.ServiceRequirement{
		ServiceCode:              s.Code,
		DurationMinutes:          s.DurationMinutes,
		BufferMinutes:            s.BufferMinutes,
		RequiredSpecializationID: specID,
		CompatibleRoomTypes:      s.CompatibleRoomTypes,
		MinPreparationDays:       s.MinPreparationDays,
		RecoveryDays:             s.RecoveryDays,
		SpacingDays:              s.SpacingDays,
		MaxPerDay:                s.MaxPerDay,
	}
}

// Room maps to the room table. A room owns shifts like any staff member, so
// its availability flows through the same interval computation.
type Room struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	Code                  string    `db:"code" json:"code"`
	Name                  string    `db:"name" json:"name"`
	RoomType              string    `db:"room_type" json:"room_type"`
	SupportedServiceCodes []string  `db:"supported_service_codes" json:"supported_service_codes"`
	Active                bool      `db:"active" json:"active"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// Info projects the room onto its scheduling view.
func (r *Room) Info() scheduling.RoomInfo {
	return scheduling.RoomInfo{
		RoomCode:              r.Code,
		Name:                  r.Name,
		RoomType:              r.RoomType,
		SupportedServiceCodes: r.SupportedServiceCodes,
	}
}

// Staff roles.
const (
	RoleDentist      = "dentist"
	RoleAssistant    = "assistant"
	RoleReceptionist = "receptionist"
)

// StaffMember maps to the staff_member table.
type StaffMember struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Code              string    `db:"code" json:"code"`
	FullName          string    `db:"full_name" json:"full_name"`
	Role              string    `db:"role" json:"role"`
	SpecializationIDs []int     `db:"specialization_ids" json:"specialization_ids"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Info projects the staff member onto its scheduling view.
func (m *StaffMember) Info() scheduling.StaffInfo {
	return scheduling.StaffInfo{
		EmployeeCode:      m.Code,
		FullName:          m.FullName,
		SpecializationIDs: m.SpecializationIDs,
	}
}
