package store

import (
	"go.uber.org/zap"

	"mission-clinic-server/internal/capacity"
	"mission-clinic-server/internal/models"
)

// AddAssignment signs the session's participant up for a role in a shift.
// It returns false without changing state when nobody is logged in, when the
// role is full, or when the participant already holds a role in that shift.
func (s *Store) AddAssignment(sess *Session, clinicDayID, shiftID, roleID string) (models.Assignment, bool) {
	if !sess.LoggedIn() {
		return models.Assignment{}, false
	}

	s.mu.Lock()
	if _, ok := s.state.Participant(sess.ParticipantID); !ok {
		s.mu.Unlock()
		return models.Assignment{}, false
	}
	if s.isRoleFullLocked(clinicDayID, shiftID, roleID) {
		s.mu.Unlock()
		s.logger.Debug("assignment rejected: role full",
			zap.String("clinic_day_id", clinicDayID), zap.String("shift_id", shiftID), zap.String("role_id", roleID))
		return models.Assignment{}, false
	}
	for _, a := range s.state.Assignments {
		if a.ParticipantID == sess.ParticipantID && a.ClinicDayID == clinicDayID && a.ShiftID == shiftID {
			s.mu.Unlock()
			s.logger.Debug("assignment rejected: already assigned in shift",
				zap.String("participant_id", sess.ParticipantID), zap.String("existing_role_id", a.RoleID))
			return models.Assignment{}, false
		}
	}

	a := models.Assignment{
		ID:            s.newID(),
		ParticipantID: sess.ParticipantID,
		ClinicDayID:   clinicDayID,
		ShiftID:       shiftID,
		RoleID:        roleID,
		CreatedAt:     s.now(),
	}
	s.state.Assignments = append(s.state.Assignments, a)
	s.mu.Unlock()

	s.enqueue(upsert(models.CollectionAssignments, a.ID, a))
	return a, true
}

// RemoveAssignment deletes an assignment by id. Unknown ids are ignored.
func (s *Store) RemoveAssignment(id string) {
	s.mu.Lock()
	kept := s.state.Assignments[:0:0]
	found := false
	for _, a := range s.state.Assignments {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if found {
		s.state.Assignments = kept
	}
	s.mu.Unlock()

	if found {
		s.enqueue(remove(models.CollectionAssignments, id))
	}
}

// Assignment looks up an assignment by id.
func (s *Store) Assignment(id string) (models.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.state.Assignments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Assignment{}, false
}

// MarkAttendance records whether the assignee showed up.
func (s *Store) MarkAttendance(assignmentID string, attended bool) (models.Assignment, bool) {
	s.mu.Lock()
	var updated models.Assignment
	found := false
	for i, a := range s.state.Assignments {
		if a.ID == assignmentID {
			v := attended
			a.Attended = &v
			s.state.Assignments[i] = a
			updated, found = a, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return models.Assignment{}, false
	}
	s.enqueue(upsert(models.CollectionAssignments, updated.ID, updated))
	return updated, true
}

// IsRoleFull gates new sign-ups. Unlike capacity.RoleShiftStatus it honors
// per-day RoleCapacity overrides, using the role default only as a fallback.
func (s *Store) IsRoleFull(clinicDayID, shiftID, roleID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRoleFullLocked(clinicDayID, shiftID, roleID)
}

func (s *Store) isRoleFullLocked(clinicDayID, shiftID, roleID string) bool {
	return capacity.CountAssignments(&s.state, clinicDayID, shiftID, roleID) >= s.effectiveCapacityLocked(clinicDayID, shiftID, roleID)
}

func (s *Store) effectiveCapacityLocked(clinicDayID, shiftID, roleID string) int {
	for _, rc := range s.state.RoleCapacities {
		if rc.ClinicDayID == clinicDayID && rc.ShiftID == shiftID && rc.RoleID == roleID {
			return rc.Capacity
		}
	}
	if role, ok := s.state.Role(roleID); ok {
		return role.CapacityPerShift
	}
	return 0
}

// MyAssignmentsForDay lists the session participant's assignments on a day.
func (s *Store) MyAssignmentsForDay(sess *Session, clinicDayID string) []models.Assignment {
	out := []models.Assignment{}
	if !sess.LoggedIn() {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.state.Assignments {
		if a.ParticipantID == sess.ParticipantID && a.ClinicDayID == clinicDayID {
			out = append(out, a)
		}
	}
	return out
}

// ParticipantsForShift lists participants holding any role in a shift, in
// assignment order and without duplicates.
func (s *Store) ParticipantsForShift(clinicDayID, shiftID string) []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	out := []models.Participant{}
	for _, a := range s.state.Assignments {
		if a.ClinicDayID != clinicDayID || a.ShiftID != shiftID || seen[a.ParticipantID] {
			continue
		}
		if p, ok := s.state.Participant(a.ParticipantID); ok {
			seen[a.ParticipantID] = true
			out = append(out, p)
		}
	}
	return out
}

// AttendedCount counts assignees marked as attended for a role in a shift.
func (s *Store) AttendedCount(clinicDayID, shiftID, roleID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.state.Assignments {
		if a.Matches(clinicDayID, shiftID, roleID) && a.Attended != nil && *a.Attended {
			n++
		}
	}
	return n
}
