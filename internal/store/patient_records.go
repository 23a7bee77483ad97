package store

import (
	"mission-clinic-server/internal/models"
)

// AddPatientRecord stores a visit on behalf of the session participant and
// deducts linked medications from pharmacy stock.
func (s *Store) AddPatientRecord(sess *Session, rec models.PatientRecord) (models.PatientRecord, bool) {
	if !sess.LoggedIn() {
		return models.PatientRecord{}, false
	}

	s.mu.Lock()
	author, ok := s.state.Participant(sess.ParticipantID)
	if !ok {
		s.mu.Unlock()
		return models.PatientRecord{}, false
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	rec.CreatedBy = author.Email
	rec.CreatedAt = s.now()
	rec.Medications = append([]models.Medication(nil), rec.Medications...)
	changes := s.deductMedicationsLocked(&rec)
	s.state.PatientRecords = append(s.state.PatientRecords, rec)
	s.mu.Unlock()

	s.enqueue(append(changes, upsert(models.CollectionPatientRecords, rec.ID, rec))...)
	return rec, true
}

// UpdatePatientRecord replaces a record by id. Newly linked medications are deducted.
func (s *Store) UpdatePatientRecord(rec models.PatientRecord) (models.PatientRecord, bool) {
	s.mu.Lock()
	idx := -1
	for i, existing := range s.state.PatientRecords {
		if existing.ID == rec.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.PatientRecord{}, false
	}
	rec.Medications = append([]models.Medication(nil), rec.Medications...)
	changes := s.deductMedicationsLocked(&rec)
	s.state.PatientRecords[idx] = rec
	s.mu.Unlock()

	s.enqueue(append(changes, upsert(models.CollectionPatientRecords, rec.ID, rec))...)
	return rec, true
}

// PatientRecordsForDay lists records of one clinic day; an empty id lists all.
func (s *Store) PatientRecordsForDay(clinicDayID string) []models.PatientRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.PatientRecord{}
	for _, rec := range s.state.PatientRecords {
		if clinicDayID == "" || rec.ClinicDayID == clinicDayID {
			rec.Medications = append([]models.Medication(nil), rec.Medications...)
			out = append(out, rec)
		}
	}
	return out
}

// deductMedicationsLocked takes one unit of stock for each linked medication
// not yet deducted. Stock never goes below zero.
func (s *Store) deductMedicationsLocked(rec *models.PatientRecord) []Change {
	var changes []Change
	for i, med := range rec.Medications {
		if med.PharmacyItemID == "" || med.Deducted {
			continue
		}
		for j, item := range s.state.PharmacyItems {
			if item.ID != med.PharmacyItemID {
				continue
			}
			if item.Stock > 0 {
				item.Stock--
			}
			item.LastUpdated = s.now()
			s.state.PharmacyItems[j] = item
			rec.Medications[i].Deducted = true
			changes = append(changes, upsert(models.CollectionPharmacyItems, item.ID, item))
			break
		}
	}
	return changes
}
