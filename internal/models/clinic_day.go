package models

// ClinicDay is one calendar day of the mission during which shifts run.
type ClinicDay struct {
	ID                   string `json:"id"`
	Date                 string `json:"date" validate:"required"`
	Name                 string `json:"name"`
	IsActive             bool   `json:"isActive"`
	TicketsIssued        int    `json:"ticketsIssued"`
	ActualPatientsServed *int   `json:"actualPatientsServed,omitempty"`
}
