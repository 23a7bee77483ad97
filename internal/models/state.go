package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidFormat is returned when an imported snapshot cannot be parsed.
var ErrInvalidFormat = errors.New("invalid format")

// Collection names shared by the outbox, the remote document store and push updates.
const (
	CollectionParticipants   = "participants"
	CollectionClinicDays     = "clinicDays"
	CollectionAssignments    = "assignments"
	CollectionFlowRates      = "flowRates"
	CollectionShiftActuals   = "shiftActuals"
	CollectionPatientRecords = "patientRecords"
	CollectionPharmacyItems  = "pharmacyItems"
	CollectionRoleCapacities = "roleCapacities"
)

// SyncedCollections lists every collection mirrored to the remote store.
var SyncedCollections = []string{
	CollectionParticipants,
	CollectionClinicDays,
	CollectionAssignments,
	CollectionFlowRates,
	CollectionShiftActuals,
	CollectionPatientRecords,
	CollectionPharmacyItems,
	CollectionRoleCapacities,
}

// State holds every entity of the mission in memory.
type State struct {
	Participants   []Participant
	ClinicDays     []ClinicDay
	Assignments    []Assignment
	Roles          []Role
	Shifts         []Shift
	FlowRates      map[string]FlowRate
	ShiftActuals   []ShiftActuals
	PatientRecords []PatientRecord
	PharmacyItems  []PharmacyItem
	RoleCapacities []RoleCapacity
}

// Snapshot is the import/export document. It mirrors State plus the exporting user.
type Snapshot struct {
	Participants   []Participant       `json:"participants" validate:"dive"`
	ClinicDays     []ClinicDay         `json:"clinicDays" validate:"dive"`
	Assignments    []Assignment        `json:"assignments" validate:"dive"`
	Roles          []Role              `json:"roles"`
	Shifts         []Shift             `json:"shifts"`
	FlowRates      map[string]FlowRate `json:"flowRates"`
	ShiftActuals   []ShiftActuals      `json:"shiftActuals"`
	PatientRecords []PatientRecord     `json:"patientRecords"`
	PharmacyItems  []PharmacyItem      `json:"pharmacyItems"`
	RoleCapacities []RoleCapacity      `json:"roleCapacities"`
	CurrentUser    *Participant        `json:"currentUser"`
}

// Role looks up a role by id.
func (s *State) Role(id string) (Role, bool) {
	for _, r := range s.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// Shift looks up a shift by id.
func (s *State) Shift(id string) (Shift, bool) {
	for _, sh := range s.Shifts {
		if sh.ID == id {
			return sh, true
		}
	}
	return Shift{}, false
}

// Participant looks up a participant by id.
func (s *State) Participant(id string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// ClinicDay looks up a clinic day by id.
func (s *State) ClinicDay(id string) (ClinicDay, bool) {
	for _, d := range s.ClinicDays {
		if d.ID == id {
			return d, true
		}
	}
	return ClinicDay{}, false
}

// Clone returns a deep copy so callers can read without holding the store lock.
func (s *State) Clone() State {
	out := State{
		Participants:   cloneSlice(s.Participants),
		ClinicDays:     cloneSlice(s.ClinicDays),
		Assignments:    cloneSlice(s.Assignments),
		Roles:          cloneSlice(s.Roles),
		Shifts:         cloneSlice(s.Shifts),
		FlowRates:      make(map[string]FlowRate, len(s.FlowRates)),
		ShiftActuals:   cloneSlice(s.ShiftActuals),
		PatientRecords: cloneSlice(s.PatientRecords),
		PharmacyItems:  cloneSlice(s.PharmacyItems),
		RoleCapacities: cloneSlice(s.RoleCapacities),
	}
	for i, d := range out.ClinicDays {
		if d.ActualPatientsServed != nil {
			v := *d.ActualPatientsServed
			out.ClinicDays[i].ActualPatientsServed = &v
		}
	}
	for i, a := range out.Assignments {
		if a.Attended != nil {
			v := *a.Attended
			out.Assignments[i].Attended = &v
		}
	}
	for i, r := range out.Roles {
		if r.PatientsPerHourPerStaff != nil {
			v := *r.PatientsPerHourPerStaff
			out.Roles[i].PatientsPerHourPerStaff = &v
		}
	}
	for k, v := range s.FlowRates {
		out.FlowRates[k] = v
	}
	for i, rec := range out.PatientRecords {
		out.PatientRecords[i].Medications = cloneSlice(rec.Medications)
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// ToSnapshot converts state into its export document.
func (s *State) ToSnapshot(currentUser *Participant) Snapshot {
	c := s.Clone()
	return Snapshot{
		Participants:   orEmpty(c.Participants),
		ClinicDays:     orEmpty(c.ClinicDays),
		Assignments:    orEmpty(c.Assignments),
		Roles:          c.Roles,
		Shifts:         c.Shifts,
		FlowRates:      c.FlowRates,
		ShiftActuals:   c.ShiftActuals,
		PatientRecords: c.PatientRecords,
		PharmacyItems:  c.PharmacyItems,
		RoleCapacities: c.RoleCapacities,
		CurrentUser:    currentUser,
	}
}

// orEmpty keeps exported collections as JSON lists rather than null.
func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// ToState converts an imported snapshot into state. A nil flow-rate map becomes empty.
func (snap Snapshot) ToState() State {
	st := State{
		Participants:   snap.Participants,
		ClinicDays:     snap.ClinicDays,
		Assignments:    snap.Assignments,
		Roles:          snap.Roles,
		Shifts:         snap.Shifts,
		ShiftActuals:   snap.ShiftActuals,
		PatientRecords: snap.PatientRecords,
		PharmacyItems:  snap.PharmacyItems,
		RoleCapacities: snap.RoleCapacities,
	}
	st.FlowRates = make(map[string]FlowRate, len(snap.FlowRates))
	for roleID, fr := range snap.FlowRates {
		// The map key is the role; entities synced one by one carry it inside.
		fr.RoleID = roleID
		st.FlowRates[roleID] = fr
	}
	return st.Clone()
}

// requiredSnapshotKeys must be present as arrays for a document to count as a
// snapshot.
var requiredSnapshotKeys = []string{CollectionParticipants, CollectionClinicDays}

// DecodeSnapshot parses and validates a snapshot document.
// Any failure is reported as ErrInvalidFormat.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	// json.Unmarshal also rejects trailing data after the top-level value.
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if top == nil {
		return Snapshot{}, fmt.Errorf("%w: document is not an object", ErrInvalidFormat)
	}
	for _, key := range requiredSnapshotKeys {
		raw, ok := top[key]
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: missing %s", ErrInvalidFormat, key)
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
			return Snapshot{}, fmt.Errorf("%w: %s is not a list", ErrInvalidFormat, key)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := validator.New().Struct(snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return snap, nil
}

// EncodeSnapshot writes a snapshot as indented JSON.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
