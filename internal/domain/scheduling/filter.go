package scheduling

// SpecMedicalStaff is the baseline qualification every clinical assistant
// must hold before any service-specific specialization is considered.
const SpecMedicalStaff = 1

// CompatibleRooms returns the rooms that support every requested service.
// Runs before the interval engine so structurally incompatible rooms never
// reach interval computation.
func CompatibleRooms(serviceCodes []string, rooms []RoomInfo) []RoomInfo {
	var out []RoomInfo
	for _, room := range rooms {
		supported := make(map[string]bool, len(room.SupportedServiceCodes))
		for _, code := range room.SupportedServiceCodes {
			supported[code] = true
		}
		ok := true
		for _, code := range serviceCodes {
			if !supported[code] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, room)
		}
	}
	return out
}

// QualifiedAssistants returns the staff members holding the baseline
// medical-staff qualification and, when requiredSpecializationID is
// non-zero, that specialization as well.
func QualifiedAssistants(requiredSpecializationID int, staff []StaffInfo) []StaffInfo {
	var out []StaffInfo
	for _, s := range staff {
		if !s.HasSpecialization(SpecMedicalStaff) {
			continue
		}
		if requiredSpecializationID != 0 && !s.HasSpecialization(requiredSpecializationID) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// QualifiedDoctors returns the doctors holding every specialization the
// requested services mandate.
func QualifiedDoctors(requirements []*ServiceRequirement, doctors []StaffInfo) []StaffInfo {
	var out []StaffInfo
	for _, d := range doctors {
		ok := true
		for _, req := range requirements {
			if req.RequiredSpecializationID != 0 && !d.HasSpecialization(req.RequiredSpecializationID) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}
