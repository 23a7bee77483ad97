// Package catalog holds the built-in role and shift catalogs and the sample
// data used when nothing else can be loaded.
package catalog

import "mission-clinic-server/internal/models"

// Shift ids. Every clinic day has exactly these three slots.
const (
	ShiftMorning   = "morning"
	ShiftMidday    = "midday"
	ShiftAfternoon = "afternoon"
)

func rate(v float64) *float64 { return &v }

// Roles returns a fresh copy of the built-in role catalog.
func Roles() []models.Role {
	return []models.Role{
		{ID: "physician", Name: "Physician", Category: models.CategoryClinical, CapacityPerShift: 4, PatientsPerHourPerStaff: rate(4), Icon: "stethoscope"},
		{ID: "nurse", Name: "Nurse", Category: models.CategoryClinical, CapacityPerShift: 6, PatientsPerHourPerStaff: rate(6), Icon: "syringe"},
		{ID: "dentist", Name: "Dentist", Category: models.CategoryClinical, CapacityPerShift: 2, PatientsPerHourPerStaff: rate(2), Icon: "tooth"},
		{ID: "optometry", Name: "Optometry", Category: models.CategoryClinical, CapacityPerShift: 2, PatientsPerHourPerStaff: rate(3), Icon: "glasses"},
		{ID: "pharmacy", Name: "Pharmacy", Category: models.CategorySupport, CapacityPerShift: 3, Icon: "pill"},
		{ID: "triage", Name: "Triage", Category: models.CategorySupport, CapacityPerShift: 3, Icon: "clipboard"},
		{ID: "registration", Name: "Registration", Category: models.CategorySupport, CapacityPerShift: 3, Icon: "id-card"},
		{ID: "translator", Name: "Translator", Category: models.CategorySupport, CapacityPerShift: 5, Icon: "languages"},
	}
}

// Shifts returns a fresh copy of the built-in shift catalog.
func Shifts() []models.Shift {
	return []models.Shift{
		{ID: ShiftMorning, Name: "Morning", StartTime: "07:30", EndTime: "10:00", DurationHours: 2.5},
		{ID: ShiftMidday, Name: "Midday", StartTime: "10:00", EndTime: "12:30", DurationHours: 2.5},
		{ID: ShiftAfternoon, Name: "Afternoon", StartTime: "12:30", EndTime: "15:00", DurationHours: 2.5},
	}
}

// HistoricalFlowRates seeds one historical estimate per clinical role from its baseline.
func HistoricalFlowRates() map[string]models.FlowRate {
	out := map[string]models.FlowRate{}
	for _, r := range Roles() {
		if !r.IsClinical() || r.PatientsPerHourPerStaff == nil {
			continue
		}
		out[r.ID] = models.FlowRate{
			RoleID: r.ID,
			Rate:   *r.PatientsPerHourPerStaff,
			Source: models.SourceHistorical,
		}
	}
	return out
}
