// Package store is the single authoritative in-memory copy of the mission state.
//
// All mutations replace or append whole entities. Each mutation is applied
// locally first and then queued on the Outbox for the remote store; push
// updates from the remote store replace whole collections (last write wins).
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mission-clinic-server/internal/catalog"
	"mission-clinic-server/internal/models"
)

// Store guards the mission state. The mutex serializes mutations the way a
// single event loop would.
type Store struct {
	mu     sync.RWMutex
	state  models.State
	outbox *Outbox
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides entity id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithOutbox sets the outbox that receives remote writes.
func WithOutbox(o *Outbox) Option {
	return func(s *Store) { s.outbox = o }
}

// New creates a store hydrated from initial. Role and shift catalogs are always
// the built-in ones.
func New(initial models.State, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		state:  initial.Clone(),
		logger: logger,
		now:    time.Now,
		newID:  models.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Roles = catalog.Roles()
	s.state.Shifts = catalog.Shifts()
	if s.state.FlowRates == nil {
		s.state.FlowRates = map[string]models.FlowRate{}
	}
	return s
}

// Outbox returns the store's outbox, or nil when remote sync is off.
func (s *Store) Outbox() *Outbox {
	return s.outbox
}

// State returns a deep copy of the current state.
func (s *Store) State() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Snapshot returns the export document for a session.
func (s *Store) Snapshot(sess *Session) models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var current *models.Participant
	if sess.LoggedIn() {
		if p, ok := s.state.Participant(sess.ParticipantID); ok {
			current = &p
		}
	}
	return s.state.ToSnapshot(current)
}

// ReplaceState overwrites every collection from an imported snapshot. The role
// and shift catalogs are re-pinned to the built-in ones whatever the snapshot holds.
func (s *Store) ReplaceState(snap models.Snapshot) {
	next := snap.ToState()
	next.Roles = catalog.Roles()
	next.Shifts = catalog.Shifts()

	s.mu.Lock()
	changes := diffCollections(&s.state, &next)
	s.state = next
	s.mu.Unlock()

	s.logger.Info("state replaced from snapshot",
		zap.Int("participants", len(next.Participants)),
		zap.Int("assignments", len(next.Assignments)),
		zap.Int("remote_changes", len(changes)))
	s.enqueue(changes...)
}

// Republish queues an upsert for every entity of every synced collection and
// returns how many were queued.
func (s *Store) Republish() int {
	var changes []Change
	s.mu.RLock()
	for _, name := range models.SyncedCollections {
		for id, doc := range CollectionDocs(&s.state, name) {
			changes = append(changes, upsert(name, id, doc))
		}
	}
	s.mu.RUnlock()

	s.enqueue(changes...)
	return len(changes)
}

// ApplyRemote replaces one collection with documents pushed by the remote store.
// A collection that fails to decode is left untouched.
func (s *Store) ApplyRemote(collection string, docs []json.RawMessage) error {
	next := models.State{}
	var err error
	switch collection {
	case models.CollectionParticipants:
		next.Participants, err = decodeDocs[models.Participant](docs)
	case models.CollectionClinicDays:
		next.ClinicDays, err = decodeDocs[models.ClinicDay](docs)
	case models.CollectionAssignments:
		next.Assignments, err = decodeDocs[models.Assignment](docs)
	case models.CollectionShiftActuals:
		next.ShiftActuals, err = decodeDocs[models.ShiftActuals](docs)
	case models.CollectionPatientRecords:
		next.PatientRecords, err = decodeDocs[models.PatientRecord](docs)
	case models.CollectionPharmacyItems:
		next.PharmacyItems, err = decodeDocs[models.PharmacyItem](docs)
	case models.CollectionRoleCapacities:
		next.RoleCapacities, err = decodeDocs[models.RoleCapacity](docs)
	case models.CollectionFlowRates:
		var rates []models.FlowRate
		rates, err = decodeDocs[models.FlowRate](docs)
		next.FlowRates = make(map[string]models.FlowRate, len(rates))
		for _, fr := range rates {
			next.FlowRates[fr.RoleID] = fr
		}
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch collection {
	case models.CollectionParticipants:
		s.state.Participants = next.Participants
	case models.CollectionClinicDays:
		s.state.ClinicDays = next.ClinicDays
	case models.CollectionAssignments:
		s.state.Assignments = next.Assignments
	case models.CollectionShiftActuals:
		s.state.ShiftActuals = next.ShiftActuals
	case models.CollectionPatientRecords:
		s.state.PatientRecords = next.PatientRecords
	case models.CollectionPharmacyItems:
		s.state.PharmacyItems = next.PharmacyItems
	case models.CollectionRoleCapacities:
		s.state.RoleCapacities = next.RoleCapacities
	case models.CollectionFlowRates:
		s.state.FlowRates = next.FlowRates
	}
	return nil
}

func decodeDocs[T any](docs []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, raw := range docs {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) enqueue(changes ...Change) {
	if s.outbox == nil {
		return
	}
	s.outbox.Enqueue(changes...)
}

func upsert(collection, id string, doc any) Change {
	return Change{Collection: collection, Op: OpUpsert, ID: id, Doc: doc}
}

func remove(collection, id string) Change {
	return Change{Collection: collection, Op: OpDelete, ID: id}
}

// CollectionDocs maps document id to entity for one synced collection.
func CollectionDocs(st *models.State, collection string) map[string]any {
	out := map[string]any{}
	switch collection {
	case models.CollectionParticipants:
		for _, v := range st.Participants {
			out[v.ID] = v
		}
	case models.CollectionClinicDays:
		for _, v := range st.ClinicDays {
			out[v.ID] = v
		}
	case models.CollectionAssignments:
		for _, v := range st.Assignments {
			out[v.ID] = v
		}
	case models.CollectionFlowRates:
		for k, v := range st.FlowRates {
			out[k] = v
		}
	case models.CollectionShiftActuals:
		for _, v := range st.ShiftActuals {
			out[v.ID] = v
		}
	case models.CollectionPatientRecords:
		for _, v := range st.PatientRecords {
			out[v.ID] = v
		}
	case models.CollectionPharmacyItems:
		for _, v := range st.PharmacyItems {
			out[v.ID] = v
		}
	case models.CollectionRoleCapacities:
		for _, v := range st.RoleCapacities {
			out[v.Key()] = v
		}
	}
	return out
}

// diffCollections lists the remote writes that turn prev into next.
func diffCollections(prev, next *models.State) []Change {
	var changes []Change
	for _, name := range models.SyncedCollections {
		before := CollectionDocs(prev, name)
		after := CollectionDocs(next, name)
		for id := range before {
			if _, ok := after[id]; !ok {
				changes = append(changes, remove(name, id))
			}
		}
		for id, doc := range after {
			changes = append(changes, upsert(name, id, doc))
		}
	}
	return changes
}
