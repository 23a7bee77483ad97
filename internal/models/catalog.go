package models

// RoleCategory separates patient-facing roles from support roles.
type RoleCategory string

const (
	CategoryClinical RoleCategory = "clinical"
	CategorySupport  RoleCategory = "support"
)

// Role is a staffing category. Roles come from the built-in catalog and never change at runtime.
type Role struct {
	ID                      string       `json:"id"`
	Name                    string       `json:"name"`
	Category                RoleCategory `json:"category"`
	CapacityPerShift        int          `json:"capacityPerShift"`
	PatientsPerHourPerStaff *float64     `json:"patientsPerHourPerStaff,omitempty"`
	Icon                    string       `json:"icon"`
}

// IsClinical reports whether the role sees patients.
func (r Role) IsClinical() bool {
	return r.Category == CategoryClinical
}

// Shift is one of the fixed time windows of a clinic day.
type Shift struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	DurationHours float64 `json:"durationHours"`
}
