package models

import "time"

// FlowRateSource tells where a flow rate estimate came from.
type FlowRateSource string

const (
	SourceHistorical FlowRateSource = "historical"
	SourceActual     FlowRateSource = "actual"
)

// FlowRate is the live patients/hour/staff estimate for a role.
type FlowRate struct {
	RoleID      string         `json:"roleId"`
	Rate        float64        `json:"rate"`
	Source      FlowRateSource `json:"source"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// ShiftActuals records what a role actually achieved in a shift. Append-only.
type ShiftActuals struct {
	ID             string    `json:"id"`
	ClinicDayID    string    `json:"clinicDayId" binding:"required"`
	ShiftID        string    `json:"shiftId" binding:"required"`
	RoleID         string    `json:"roleId" binding:"required"`
	PatientsServed int       `json:"patientsServed" binding:"min=0"`
	StaffCount     int       `json:"staffCount" binding:"min=0"`
	Notes          string    `json:"notes,omitempty"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// RoleCapacity overrides a role's default capacity for one shift of one day.
type RoleCapacity struct {
	ClinicDayID string `json:"clinicDayId" binding:"required"`
	ShiftID     string `json:"shiftId" binding:"required"`
	RoleID      string `json:"roleId" binding:"required"`
	Capacity    int    `json:"capacity" binding:"min=0"`
}

// Key identifies the override's (day, shift, role) triple.
func (rc RoleCapacity) Key() string {
	return rc.ClinicDayID + "|" + rc.ShiftID + "|" + rc.RoleID
}
