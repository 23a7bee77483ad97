package models

import (
	"time"
)

// Assignment commits one participant to one role for one shift on one clinic day.
type Assignment struct {
	ID            string    `json:"id" validate:"required"`
	ParticipantID string    `json:"participantId" validate:"required"`
	ClinicDayID   string    `json:"clinicDayId" validate:"required"`
	ShiftID       string    `json:"shiftId" validate:"required"`
	RoleID        string    `json:"roleId" validate:"required"`
	CreatedAt     time.Time `json:"createdAt"`
	Attended      *bool     `json:"attended,omitempty"`
}

// Matches reports whether the assignment covers the given day, shift and role.
func (a Assignment) Matches(clinicDayID, shiftID, roleID string) bool {
	return a.ClinicDayID == clinicDayID && a.ShiftID == shiftID && a.RoleID == roleID
}
