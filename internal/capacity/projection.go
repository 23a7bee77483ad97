package capacity

import (
	"math"

	"mission-clinic-server/internal/models"
)

// NoShowBuffer inflates projected capacity when recommending tickets.
const NoShowBuffer = 1.05

// PatientCapacity is the projected throughput of one role in one shift.
type PatientCapacity struct {
	StaffCount        int     `json:"staffCount"`
	FlowRate          float64 `json:"flowRate"`
	ProjectedPatients int     `json:"projectedPatients"`
}

// DayCapacity aggregates projected patients for a clinic day.
type DayCapacity struct {
	ByRole  map[string]int `json:"byRole"`
	ByShift map[string]int `json:"byShift"`
	Total   int            `json:"total"`
}

// CurrentFlowRate returns the live rate for a role, falling back to the role's
// baseline and then to zero.
func CurrentFlowRate(state *models.State, roleID string) float64 {
	if fr, ok := state.FlowRates[roleID]; ok {
		return fr.Rate
	}
	if role, ok := state.Role(roleID); ok && role.PatientsPerHourPerStaff != nil {
		return *role.PatientsPerHourPerStaff
	}
	return 0
}

// ProjectPatientCapacity projects how many patients a role can see in a shift.
func ProjectPatientCapacity(state *models.State, clinicDayID, shiftID, roleID string) PatientCapacity {
	staff := CountAssignments(state, clinicDayID, shiftID, roleID)
	rate := CurrentFlowRate(state, roleID)

	hours := 0.0
	if shift, ok := state.Shift(shiftID); ok {
		hours = shift.DurationHours
	}

	return PatientCapacity{
		StaffCount:        staff,
		FlowRate:          rate,
		ProjectedPatients: int(math.Floor(float64(staff) * rate * hours)),
	}
}

// ProjectDayCapacity sums projected patients over clinical roles and all shifts.
func ProjectDayCapacity(state *models.State, clinicDayID string) DayCapacity {
	dc := DayCapacity{
		ByRole:  map[string]int{},
		ByShift: map[string]int{},
	}
	for _, role := range state.Roles {
		if !role.IsClinical() {
			continue
		}
		for _, shift := range state.Shifts {
			pc := ProjectPatientCapacity(state, clinicDayID, shift.ID, role.ID)
			dc.ByRole[role.ID] += pc.ProjectedPatients
			dc.ByShift[shift.ID] += pc.ProjectedPatients
			dc.Total += pc.ProjectedPatients
		}
	}
	return dc
}

// RecommendedTickets is the day's projected capacity plus the no-show buffer.
func RecommendedTickets(state *models.State, clinicDayID string) int {
	total := ProjectDayCapacity(state, clinicDayID).Total
	return int(math.Floor(float64(total) * NoShowBuffer))
}
