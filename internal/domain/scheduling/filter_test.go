package scheduling

import "testing"

func TestCompatibleRoomsRequiresAllServices(t *testing.T) {
	rooms := []RoomInfo{
		{RoomCode: "ROOM-1", RoomType: "SURGERY", SupportedServiceCodes: []string{"SRV-EXTRACT", "SRV-IMPLANT"}},
		{RoomCode: "ROOM-2", RoomType: "GENERAL", SupportedServiceCodes: []string{"SRV-CLEAN"}},
		{RoomCode: "ROOM-3", RoomType: "SURGERY", SupportedServiceCodes: []string{"SRV-EXTRACT"}},
	}

	got := CompatibleRooms([]string{"SRV-EXTRACT", "SRV-IMPLANT"}, rooms)
	if len(got) != 1 || got[0].RoomCode != "ROOM-1" {
		t.Errorf("expected only ROOM-1, got %v", got)
	}
}

func TestCompatibleRoomsNoMatch(t *testing.T) {
	rooms := []RoomInfo{{RoomCode: "ROOM-1", SupportedServiceCodes: []string{"SRV-CLEAN"}}}
	if got := CompatibleRooms([]string{"SRV-IMPLANT"}, rooms); len(got) != 0 {
		t.Errorf("expected no rooms, got %v", got)
	}
}

func TestQualifiedAssistantsBaseline(t *testing.T) {
	staff := []StaffInfo{
		{EmployeeCode: "AST-1", SpecializationIDs: []int{SpecMedicalStaff}},
		{EmployeeCode: "REC-1", SpecializationIDs: []int{9}}, // non-clinical
	}

	got := QualifiedAssistants(0, staff)
	if len(got) != 1 || got[0].EmployeeCode != "AST-1" {
		t.Errorf("expected only AST-1, got %v", got)
	}
}

func TestQualifiedAssistantsWithSpecialization(t *testing.T) {
	staff := []StaffInfo{
		{EmployeeCode: "AST-1", SpecializationIDs: []int{SpecMedicalStaff}},
		{EmployeeCode: "AST-2", SpecializationIDs: []int{SpecMedicalStaff, 4}},
		{EmployeeCode: "AST-3", SpecializationIDs: []int{4}}, // missing baseline
	}

	got := QualifiedAssistants(4, staff)
	if len(got) != 1 || got[0].EmployeeCode != "AST-2" {
		t.Errorf("expected only AST-2, got %v", got)
	}
}

func TestQualifiedDoctorsAcrossServices(t *testing.T) {
	reqs := []*ServiceRequirement{
		{ServiceCode: "SRV-IMPLANT", RequiredSpecializationID: 3},
		{ServiceCode: "SRV-ORTHO", RequiredSpecializationID: 5},
		{ServiceCode: "SRV-CLEAN"}, // no requirement
	}
	doctors := []StaffInfo{
		{EmployeeCode: "DOC-1", SpecializationIDs: []int{SpecMedicalStaff, 3, 5}},
		{EmployeeCode: "DOC-2", SpecializationIDs: []int{SpecMedicalStaff, 3}},
	}

	got := QualifiedDoctors(reqs, doctors)
	if len(got) != 1 || got[0].EmployeeCode != "DOC-1" {
		t.Errorf("expected only DOC-1, got %v", got)
	}
}

func TestQualifiedDoctorsNoRequirements(t *testing.T) {
	doctors := []StaffInfo{{EmployeeCode: "DOC-1"}, {EmployeeCode: "DOC-2"}}
	got := QualifiedDoctors([]*ServiceRequirement{{ServiceCode: "SRV-CLEAN"}}, doctors)
	if len(got) != 2 {
		t.Errorf("services without a required specialization admit every doctor, got %v", got)
	}
}
