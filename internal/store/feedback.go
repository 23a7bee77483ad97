package store

import (
	"go.uber.org/zap"

	"mission-clinic-server/internal/capacity"
	"mission-clinic-server/internal/models"
)

// RecordShiftActuals appends observed shift results and feeds them back into
// the flow rates. Every entry with patients served and staff present replaces
// its role's live rate with the blended estimate, rounded to one decimal and
// tagged as actual.
func (s *Store) RecordShiftActuals(entries []models.ShiftActuals) []models.ShiftActuals {
	now := s.now()
	recorded := make([]models.ShiftActuals, 0, len(entries))
	var changes []Change

	s.mu.Lock()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = s.newID()
		}
		e.RecordedAt = now
		s.state.ShiftActuals = append(s.state.ShiftActuals, e)
		recorded = append(recorded, e)
		changes = append(changes, upsert(models.CollectionShiftActuals, e.ID, e))

		if e.PatientsServed <= 0 || e.StaffCount <= 0 {
			continue
		}
		hours := 0.0
		if shift, ok := s.state.Shift(e.ShiftID); ok {
			hours = shift.DurationHours
		}
		actual := capacity.ActualFlowRate(e.PatientsServed, e.StaffCount, hours)
		current := capacity.CurrentFlowRate(&s.state, e.RoleID)
		fr := models.FlowRate{
			RoleID:      e.RoleID,
			Rate:        capacity.RoundToTenth(capacity.BlendFlowRates(current, actual, capacity.DefaultBlendWeight)),
			Source:      models.SourceActual,
			LastUpdated: now,
		}
		s.state.FlowRates[e.RoleID] = fr
		changes = append(changes, upsert(models.CollectionFlowRates, fr.RoleID, fr))

		s.logger.Info("flow rate updated from shift actuals",
			zap.String("role_id", e.RoleID),
			zap.Float64("previous", current),
			zap.Float64("observed", actual),
			zap.Float64("rate", fr.Rate))
	}
	s.mu.Unlock()

	s.enqueue(changes...)
	return recorded
}
