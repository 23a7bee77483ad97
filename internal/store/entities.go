package store

import (
	"strings"

	"mission-clinic-server/internal/models"
)

// Participant looks up a participant by id.
func (s *Store) Participant(id string) (models.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Participant(id)
}

// AddParticipant appends a participant. It returns false when the email is taken.
func (s *Store) AddParticipant(p models.Participant) (models.Participant, bool) {
	s.mu.Lock()
	for _, existing := range s.state.Participants {
		if existing.HasEmail(p.Email) {
			s.mu.Unlock()
			return models.Participant{}, false
		}
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.Email = strings.TrimSpace(p.Email)
	s.state.Participants = append(s.state.Participants, p)
	s.mu.Unlock()

	s.enqueue(upsert(models.CollectionParticipants, p.ID, p))
	return p, true
}

// UpdateParticipant replaces a participant. It returns false when the id is
// unknown or the new email belongs to someone else.
func (s *Store) UpdateParticipant(p models.Participant) bool {
	s.mu.Lock()
	idx := -1
	for i, existing := range s.state.Participants {
		if existing.ID == p.ID {
			idx = i
			continue
		}
		if existing.HasEmail(p.Email) {
			s.mu.Unlock()
			return false
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.state.Participants[idx] = p
	s.mu.Unlock()

	s.enqueue(upsert(models.CollectionParticipants, p.ID, p))
	return true
}

// AddClinicDay appends a clinic day, assigning an id when missing.
func (s *Store) AddClinicDay(d models.ClinicDay) models.ClinicDay {
	if d.ID == "" {
		d.ID = s.newID()
	}
	s.mu.Lock()
	s.state.ClinicDays = append(s.state.ClinicDays, d)
	s.mu.Unlock()

	s.enqueue(upsert(models.CollectionClinicDays, d.ID, d))
	return d
}

// UpdateClinicDay replaces a clinic day by id.
func (s *Store) UpdateClinicDay(d models.ClinicDay) bool {
	s.mu.Lock()
	found := false
	for i, existing := range s.state.ClinicDays {
		if existing.ID == d.ID {
			s.state.ClinicDays[i] = d
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.enqueue(upsert(models.CollectionClinicDays, d.ID, d))
	}
	return found
}

// RemoveClinicDay deletes a clinic day. Assignments referencing it are kept.
func (s *Store) RemoveClinicDay(id string) bool {
	s.mu.Lock()
	kept := s.state.ClinicDays[:0:0]
	found := false
	for _, d := range s.state.ClinicDays {
		if d.ID == id {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if found {
		s.state.ClinicDays = kept
	}
	s.mu.Unlock()

	if found {
		s.enqueue(remove(models.CollectionClinicDays, id))
	}
	return found
}

// UpdateFlowRate sets the live flow rate of a role.
func (s *Store) UpdateFlowRate(fr models.FlowRate) models.FlowRate {
	if fr.LastUpdated.IsZero() {
		fr.LastUpdated = s.now()
	}
	s.mu.Lock()
	s.state.FlowRates[fr.RoleID] = fr
	s.mu.Unlock()

	s.enqueue(upsert(models.CollectionFlowRates, fr.RoleID, fr))
	return fr
}

// UpdatePharmacyItems replaces items by id, appending unknown ones.
func (s *Store) UpdatePharmacyItems(items []models.PharmacyItem) []models.PharmacyItem {
	now := s.now()
	changes := make([]Change, 0, len(items))
	out := make([]models.PharmacyItem, 0, len(items))

	s.mu.Lock()
	for _, item := range items {
		item.LastUpdated = now
		replaced := false
		for i, existing := range s.state.PharmacyItems {
			if existing.ID == item.ID {
				s.state.PharmacyItems[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			s.state.PharmacyItems = append(s.state.PharmacyItems, item)
		}
		out = append(out, item)
		changes = append(changes, upsert(models.CollectionPharmacyItems, item.ID, item))
	}
	s.mu.Unlock()

	s.enqueue(changes...)
	return out
}

// UpdateRoleCapacity sets the capacity override for a (day, shift, role) triple.
func (s *Store) UpdateRoleCapacity(rc models.RoleCapacity) {
	s.mu.Lock()
	replaced := false
	for i, existing := range s.state.RoleCapacities {
		if existing.Key() == rc.Key() {
			s.state.RoleCapacities[i] = rc
			replaced = true
			break
		}
	}
	if !replaced {
		s.state.RoleCapacities = append(s.state.RoleCapacities, rc)
	}
	s.mu.Unlock()

	s.enqueue(upsert(models.CollectionRoleCapacities, rc.Key(), rc))
}
