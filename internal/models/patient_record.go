package models

import (
	"time"
)

// Medication is one line of a patient's prescription.
type Medication struct {
	Name           string `json:"name" binding:"required"`
	Dose           string `json:"dose"`
	Frequency      string `json:"frequency"`
	PharmacyItemID string `json:"pharmacyItemId,omitempty"`
	Deducted       bool   `json:"deducted,omitempty"`
}

// PatientRecord represents a patient visit recorded on a clinic day
type PatientRecord struct {
	ID          string       `json:"id"`
	PatientName string       `json:"patientName" binding:"required"`
	Medications []Medication `json:"medications" binding:"dive"`
	FollowUp    string       `json:"followUp,omitempty"`
	Comments    string       `json:"comments,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	ClinicDayID string       `json:"clinicDayId" binding:"required"`
}

// PharmacyItem is one stock line of the pharmacy.
type PharmacyItem struct {
	ID          string    `json:"id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Category    string    `json:"category"`
	Form        string    `json:"form"`
	Dosage      string    `json:"dosage"`
	Stock       int       `json:"stock" binding:"min=0"`
	LastUpdated time.Time `json:"lastUpdated"`
}
