package catalog

import (
	"time"

	"mission-clinic-server/internal/models"
)

// SampleState is the fallback data set shown when no snapshot can be loaded.
func SampleState() models.State {
	created := time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)

	participants := []models.Participant{
		{ID: "p-coordinator", Name: "Mission Coordinator", Email: "coordinator@example.org", IsAdmin: true, CreatedAt: created},
		{ID: "p-ana", Name: "Ana Morales", Email: "ana@example.org", PrimaryRole: "physician", CreatedAt: created},
		{ID: "p-ben", Name: "Ben Okafor", Email: "ben@example.org", PrimaryRole: "nurse", CreatedAt: created},
		{ID: "p-chen", Name: "Chen Li", Email: "chen@example.org", PrimaryRole: "pharmacy", CreatedAt: created},
		{ID: "p-dara", Name: "Dara Singh", Email: "dara@example.org", PrimaryRole: "translator", CreatedAt: created},
	}

	days := []models.ClinicDay{
		{ID: "day-1", Date: "2025-01-06", Name: "Day 1", IsActive: true, TicketsIssued: 120},
		{ID: "day-2", Date: "2025-01-07", Name: "Day 2", IsActive: true},
		{ID: "day-3", Date: "2025-01-08", Name: "Day 3"},
	}

	assignments := []models.Assignment{
		{ID: "a-1", ParticipantID: "p-ana", ClinicDayID: "day-1", ShiftID: ShiftMorning, RoleID: "physician", CreatedAt: created},
		{ID: "a-2", ParticipantID: "p-ben", ClinicDayID: "day-1", ShiftID: ShiftMorning, RoleID: "nurse", CreatedAt: created},
		{ID: "a-3", ParticipantID: "p-chen", ClinicDayID: "day-1", ShiftID: ShiftMorning, RoleID: "pharmacy", CreatedAt: created},
		{ID: "a-4", ParticipantID: "p-dara", ClinicDayID: "day-1", ShiftID: ShiftMidday, RoleID: "translator", CreatedAt: created},
	}

	pharmacy := []models.PharmacyItem{
		{ID: "rx-amox", Name: "Amoxicillin", Category: "Antibiotic", Form: "capsule", Dosage: "500mg", Stock: 200, LastUpdated: created},
		{ID: "rx-ibu", Name: "Ibuprofen", Category: "Analgesic", Form: "tablet", Dosage: "400mg", Stock: 500, LastUpdated: created},
		{ID: "rx-ors", Name: "Oral Rehydration Salts", Category: "Rehydration", Form: "sachet", Dosage: "20.5g", Stock: 150, LastUpdated: created},
		{ID: "rx-alb", Name: "Albendazole", Category: "Antiparasitic", Form: "tablet", Dosage: "400mg", Stock: 300, LastUpdated: created},
	}

	return models.State{
		Participants:   participants,
		ClinicDays:     days,
		Assignments:    assignments,
		Roles:          Roles(),
		Shifts:         Shifts(),
		FlowRates:      HistoricalFlowRates(),
		PharmacyItems:  pharmacy,
		ShiftActuals:   []models.ShiftActuals{},
		PatientRecords: []models.PatientRecord{},
		RoleCapacities: []models.RoleCapacity{},
	}
}
