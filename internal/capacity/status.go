// Package capacity derives staffing status and projected patient throughput
// from the mission state. Every function is pure: it reads the state it is
// given and never mutates it.
package capacity

import (
	"mission-clinic-server/internal/models"
)

const (
	// UnderstaffedRatio is the fill ratio below which a role counts as understaffed.
	UnderstaffedRatio = 0.5
	// GreenRatio and YellowRatio are the staffing color thresholds.
	GreenRatio  = 0.75
	YellowRatio = 0.25
)

// Color is the traffic-light staffing indicator.
type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Red    Color = "red"
)

// Status is the occupancy of one role in one shift of one day.
type Status struct {
	ClinicDayID  string               `json:"clinicDayId"`
	ShiftID      string               `json:"shiftId"`
	RoleID       string               `json:"roleId"`
	CurrentCount int                  `json:"currentCount"`
	Capacity     int                  `json:"capacity"`
	IsFull       bool                 `json:"isFull"`
	Participants []models.Participant `json:"participants"`
}

// ParticipantLoad pairs a participant with the number of shifts they hold on a day.
type ParticipantLoad struct {
	Participant    models.Participant `json:"participant"`
	ShiftsAssigned int                `json:"shiftsAssigned"`
}

// CountAssignments counts assignments for the (day, shift, role) triple.
func CountAssignments(state *models.State, clinicDayID, shiftID, roleID string) int {
	n := 0
	for _, a := range state.Assignments {
		if a.Matches(clinicDayID, shiftID, roleID) {
			n++
		}
	}
	return n
}

// RoleShiftStatus reports occupancy against the role's default capacity.
// Per-day RoleCapacity overrides are not consulted here.
func RoleShiftStatus(state *models.State, clinicDayID, shiftID, roleID string) Status {
	capacity := 0
	if role, ok := state.Role(roleID); ok {
		capacity = role.CapacityPerShift
	}

	participants := []models.Participant{}
	count := 0
	for _, a := range state.Assignments {
		if !a.Matches(clinicDayID, shiftID, roleID) {
			continue
		}
		count++
		if p, ok := state.Participant(a.ParticipantID); ok {
			participants = append(participants, p)
		}
	}

	return Status{
		ClinicDayID:  clinicDayID,
		ShiftID:      shiftID,
		RoleID:       roleID,
		CurrentCount: count,
		Capacity:     capacity,
		IsFull:       count >= capacity,
		Participants: participants,
	}
}

// AllStatuses returns the status of every role in every shift, shifts outermost.
func AllStatuses(state *models.State, clinicDayID string) []Status {
	out := make([]Status, 0, len(state.Roles)*len(state.Shifts))
	for _, shift := range state.Shifts {
		for _, role := range state.Roles {
			out = append(out, RoleShiftStatus(state, clinicDayID, shift.ID, role.ID))
		}
	}
	return out
}

// UnderstaffedRoles lists the roles of a shift filled below UnderstaffedRatio.
func UnderstaffedRoles(state *models.State, clinicDayID, shiftID string) []Status {
	out := []Status{}
	for _, role := range state.Roles {
		st := RoleShiftStatus(state, clinicDayID, shiftID, role.ID)
		if fillRatio(st.CurrentCount, st.Capacity) < UnderstaffedRatio {
			out = append(out, st)
		}
	}
	return out
}

// UnassignedParticipants lists participants holding fewer assignments on the day
// than there are shifts.
func UnassignedParticipants(state *models.State, clinicDayID string) []ParticipantLoad {
	counts := map[string]int{}
	for _, a := range state.Assignments {
		if a.ClinicDayID == clinicDayID {
			counts[a.ParticipantID]++
		}
	}

	out := []ParticipantLoad{}
	for _, p := range state.Participants {
		n := counts[p.ID]
		if n < len(state.Shifts) {
			out = append(out, ParticipantLoad{Participant: p, ShiftsAssigned: n})
		}
	}
	return out
}

// StaffingColor maps occupancy to a traffic light. Zero capacity is always green.
func StaffingColor(currentCount, capacity int) Color {
	if capacity == 0 {
		return Green
	}
	ratio := float64(currentCount) / float64(capacity)
	switch {
	case ratio >= GreenRatio:
		return Green
	case ratio >= YellowRatio:
		return Yellow
	default:
		return Red
	}
}

// fillRatio treats zero capacity as fully staffed.
func fillRatio(currentCount, capacity int) float64 {
	if capacity == 0 {
		return 1
	}
	return float64(currentCount) / float64(capacity)
}
