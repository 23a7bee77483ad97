package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mission-clinic-server/internal/catalog"
	"mission-clinic-server/internal/models"
)

var fixedNow = time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, initial models.State) (*Store, *Outbox) {
	t.Helper()
	seq := 0
	outbox := NewOutbox()
	s := New(initial, zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
		WithOutbox(outbox),
	)
	return s, outbox
}

func baseState() models.State {
	return models.State{
		Participants: []models.Participant{
			{ID: "p1", Name: "Ana", Email: "Ana@Example.org"},
			{ID: "p2", Name: "Ben", Email: "ben@example.org"},
		},
		ClinicDays: []models.ClinicDay{{ID: "d1", Date: "2025-01-06", Name: "Day 1", IsActive: true}},
		FlowRates:  map[string]models.FlowRate{},
	}
}

func TestLogin_FindsExistingCaseInsensitive(t *testing.T) {
	s, outbox := newTestStore(t, baseState())

	sess, p := s.Login("ana@EXAMPLE.org", "")

	assert.Equal(t, "p1", sess.ParticipantID)
	assert.Equal(t, "Ana", p.Name)
	assert.Len(t, s.State().Participants, 2)
	assert.Equal(t, 0, outbox.Len())
}

func TestLogin_CreatesParticipant(t *testing.T) {
	s, outbox := newTestStore(t, baseState())

	sess, p := s.Login("new.person@example.org", "")

	assert.True(t, sess.LoggedIn())
	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, "new.person", p.Name)
	assert.Equal(t, fixedNow, p.CreatedAt)
	assert.Len(t, s.State().Participants, 3)
	assert.Equal(t, 1, outbox.Len())
}

func TestLogout_ClearsSessionOnly(t *testing.T) {
	s, _ := newTestStore(t, baseState())
	sess, _ := s.Login("ben@example.org", "")
	before := s.State()

	s.Logout(sess)

	assert.False(t, sess.LoggedIn())
	assert.Equal(t, before, s.State())
}

func TestAddAssignment_RequiresLogin(t *testing.T) {
	s, _ := newTestStore(t, baseState())

	_, ok := s.AddAssignment(nil, "d1", catalog.ShiftMorning, "physician")
	assert.False(t, ok)

	_, ok = s.AddAssignment(&Session{}, "d1", catalog.ShiftMorning, "physician")
	assert.False(t, ok)

	_, ok = s.AddAssignment(SessionFor("ghost"), "d1", catalog.ShiftMorning, "physician")
	assert.False(t, ok)
	assert.Empty(t, s.State().Assignments)
}

func TestAddAssignment_OneRolePerShift(t *testing.T) {
	s, outbox := newTestStore(t, baseState())
	sess := SessionFor("p1")

	a, ok := s.AddAssignment(sess, "d1", catalog.ShiftMorning, "physician")
	require.True(t, ok)
	assert.Equal(t, "p1", a.ParticipantID)
	assert.Equal(t, fixedNow, a.CreatedAt)

	before := s.State()
	_, ok = s.AddAssignment(sess, "d1", catalog.ShiftMorning, "nurse")
	assert.False(t, ok)
	assert.Equal(t, before, s.State())

	_, ok = s.AddAssignment(sess, "d1", catalog.ShiftMidday, "nurse")
	assert.True(t, ok)
	assert.Equal(t, 2, outbox.Len())
}

func TestAddAssignment_RejectsWhenFull(t *testing.T) {
	st := baseState()
	st.RoleCapacities = []models.RoleCapacity{{ClinicDayID: "d1", ShiftID: catalog.ShiftMorning, RoleID: "dentist", Capacity: 1}}
	s, _ := newTestStore(t, st)

	_, ok := s.AddAssignment(SessionFor("p1"), "d1", catalog.ShiftMorning, "dentist")
	require.True(t, ok)
	assert.True(t, s.IsRoleFull("d1", catalog.ShiftMorning, "dentist"))

	before := s.State()
	_, ok = s.AddAssignment(SessionFor("p2"), "d1", catalog.ShiftMorning, "dentist")
	assert.False(t, ok)
	assert.Equal(t, before, s.State())

	// default catalog capacity for dentist is 2 on other shifts
	assert.False(t, s.IsRoleFull("d1", catalog.ShiftMidday, "dentist"))
}

func TestIsRoleFull_UnknownRole(t *testing.T) {
	s, _ := newTestStore(t, baseState())

	assert.True(t, s.IsRoleFull("d1", catalog.ShiftMorning, "astronaut"))
	_, ok := s.AddAssignment(SessionFor("p1"), "d1", catalog.ShiftMorning, "astronaut")
	assert.False(t, ok)
}

func TestRemoveAssignment(t *testing.T) {
	s, outbox := newTestStore(t, baseState())
	a, ok := s.AddAssignment(SessionFor("p1"), "d1", catalog.ShiftMorning, "physician")
	require.True(t, ok)
	outbox.Drain()

	s.RemoveAssignment("missing")
	assert.Len(t, s.State().Assignments, 1)
	assert.Equal(t, 0, outbox.Len())

	s.RemoveAssignment(a.ID)
	assert.Empty(t, s.State().Assignments)
	changes := outbox.Drain()
	require.Len(t, changes, 1)
	assert.Equal(t, OpDelete, changes[0].Op)
	assert.Equal(t, a.ID, changes[0].ID)
}

func TestQueries(t *testing.T) {
	s, _ := newTestStore(t, baseState())
	_, ok := s.AddAssignment(SessionFor("p1"), "d1", catalog.ShiftMorning, "physician")
	require.True(t, ok)
	_, ok = s.AddAssignment(SessionFor("p2"), "d1", catalog.ShiftMorning, "nurse")
	require.True(t, ok)
	_, ok = s.AddAssignment(SessionFor("p1"), "d1", catalog.ShiftAfternoon, "physician")
	require.True(t, ok)

	mine := s.MyAssignmentsForDay(SessionFor("p1"), "d1")
	assert.Len(t, mine, 2)
	assert.Empty(t, s.MyAssignmentsForDay(nil, "d1"))

	people := s.ParticipantsForShift("d1", catalog.ShiftMorning)
	require.Len(t, people, 2)
	assert.Equal(t, "p1", people[0].ID)
	assert.Equal(t, "p2", people[1].ID)
}

func TestMarkAttendanceAndCount(t *testing.T) {
	s, _ := newTestStore(t, baseState())
	a, ok := s.AddAssignment(SessionFor("p1"), "d1", catalog.ShiftMorning, "physician")
	require.True(t, ok)

	_, ok = s.MarkAttendance("missing", true)
	assert.False(t, ok)

	updated, ok := s.MarkAttendance(a.ID, true)
	require.True(t, ok)
	require.NotNil(t, updated.Attended)
	assert.True(t, *updated.Attended)
	assert.Equal(t, 1, s.AttendedCount("d1", catalog.ShiftMorning, "physician"))
}

func TestRecordShiftActuals_BlendsFlowRate(t *testing.T) {
	st := baseState()
	st.FlowRates["physician"] = models.FlowRate{RoleID: "physician", Rate: 4, Source: models.SourceHistorical}
	s, _ := newTestStore(t, st)

	recorded := s.RecordShiftActuals([]models.ShiftActuals{
		// 15 patients / (2 staff * 2.5h) = 3.0 per staff-hour
		{ClinicDayID: "d1", ShiftID: catalog.ShiftMorning, RoleID: "physician", PatientsServed: 15, StaffCount: 2},
		{ClinicDayID: "d1", ShiftID: catalog.ShiftMorning, RoleID: "nurse", PatientsServed: 0, StaffCount: 3},
	})

	require.Len(t, recorded, 2)
	state := s.State()
	assert.Len(t, state.ShiftActuals, 2)

	fr := state.FlowRates["physician"]
	assert.InDelta(t, 3.7, fr.Rate, 1e-9)
	assert.Equal(t, models.SourceActual, fr.Source)
	assert.Equal(t, fixedNow, fr.LastUpdated)

	_, touched := state.FlowRates["nurse"]
	assert.False(t, touched)
}

func TestRecordShiftActuals_FallsBackToRoleBaseline(t *testing.T) {
	s, _ := newTestStore(t, baseState())

	s.RecordShiftActuals([]models.ShiftActuals{
		// baseline 4, observed 6.0 => 4.6
		{ClinicDayID: "d1", ShiftID: catalog.ShiftMorning, RoleID: "physician", PatientsServed: 30, StaffCount: 2},
	})

	assert.InDelta(t, 4.6, s.State().FlowRates["physician"].Rate, 1e-9)
}

func TestParticipantsAddAndUpdate(t *testing.T) {
	s, _ := newTestStore(t, baseState())

	_, ok := s.AddParticipant(models.Participant{Name: "Dup", Email: "BEN@example.org"})
	assert.False(t, ok)

	p, ok := s.AddParticipant(models.Participant{Name: "Cara", Email: "cara@example.org"})
	require.True(t, ok)
	assert.Equal(t, "id-1", p.ID)

	p.Email = "ana@example.org"
	assert.False(t, s.UpdateParticipant(p))

	p.Name = "Cara Diaz"
	p.Email = "cara@example.org"
	assert.True(t, s.UpdateParticipant(p))
	got, _ := s.Participant(p.ID)
	assert.Equal(t, "Cara Diaz", got.Name)

	assert.False(t, s.UpdateParticipant(models.Participant{ID: "nobody", Email: "x@example.org"}))
}

func TestClinicDays(t *testing.T) {
	s, _ := newTestStore(t, baseState())

	d := s.AddClinicDay(models.ClinicDay{Date: "2025-01-07", Name: "Day 2"})
	assert.Equal(t, "id-1", d.ID)

	d.TicketsIssued = 90
	assert.True(t, s.UpdateClinicDay(d))
	assert.False(t, s.UpdateClinicDay(models.ClinicDay{ID: "missing"}))

	assert.True(t, s.RemoveClinicDay("d1"))
	assert.False(t, s.RemoveClinicDay("d1"))
	days := s.State().ClinicDays
	require.Len(t, days, 1)
	assert.Equal(t, 90, days[0].TicketsIssued)
}

func TestPatientRecord_DeductsStock(t *testing.T) {
	st := baseState()
	st.PharmacyItems = []models.PharmacyItem{
		{ID: "rx-1", Name: "Ibuprofen", Stock: 2},
		{ID: "rx-2", Name: "ORS", Stock: 0},
	}
	s, _ := newTestStore(t, st)

	_, ok := s.AddPatientRecord(nil, models.PatientRecord{PatientName: "Nobody", ClinicDayID: "d1"})
	assert.False(t, ok)

	rec, ok := s.AddPatientRecord(SessionFor("p1"), models.PatientRecord{
		PatientName: "Maria",
		ClinicDayID: "d1",
		Medications: []models.Medication{
			{Name: "Ibuprofen", Dose: "400mg", PharmacyItemID: "rx-1"},
			{Name: "ORS", PharmacyItemID: "rx-2"},
			{Name: "Advice only"},
		},
	})
	require.True(t, ok)
	assert.Equal(t, "Ana@Example.org", rec.CreatedBy)
	assert.True(t, rec.Medications[0].Deducted)
	assert.True(t, rec.Medications[1].Deducted)
	assert.False(t, rec.Medications[2].Deducted)

	items := s.State().PharmacyItems
	assert.Equal(t, 1, items[0].Stock)
	assert.Equal(t, 0, items[1].Stock)

	// already deducted medications are not taken twice
	rec.FollowUp = "return in a week"
	_, ok = s.UpdatePatientRecord(rec)
	require.True(t, ok)
	assert.Equal(t, 1, s.State().PharmacyItems[0].Stock)
	assert.Len(t, s.PatientRecordsForDay("d1"), 1)
	assert.Empty(t, s.PatientRecordsForDay("d9"))
}

func TestUpdatePharmacyItemsAndRoleCapacity(t *testing.T) {
	s, outbox := newTestStore(t, baseState())

	s.UpdatePharmacyItems([]models.PharmacyItem{{ID: "rx-1", Name: "Ibuprofen", Stock: 10}})
	s.UpdatePharmacyItems([]models.PharmacyItem{{ID: "rx-1", Name: "Ibuprofen", Stock: 8}, {ID: "rx-2", Name: "ORS", Stock: 3}})

	items := s.State().PharmacyItems
	require.Len(t, items, 2)
	assert.Equal(t, 8, items[0].Stock)
	assert.Equal(t, fixedNow, items[0].LastUpdated)

	rc := models.RoleCapacity{ClinicDayID: "d1", ShiftID: catalog.ShiftMorning, RoleID: "nurse", Capacity: 1}
	s.UpdateRoleCapacity(rc)
	rc.Capacity = 0
	s.UpdateRoleCapacity(rc)
	caps := s.State().RoleCapacities
	require.Len(t, caps, 1)
	assert.Equal(t, 0, caps[0].Capacity)
	assert.True(t, s.IsRoleFull("d1", catalog.ShiftMorning, "nurse"))
	assert.Equal(t, 5, outbox.Len())
}

func TestReplaceState_RepinsCatalogs(t *testing.T) {
	s, outbox := newTestStore(t, baseState())

	snap := models.Snapshot{
		Participants: []models.Participant{{ID: "x1", Name: "Imported", Email: "imp@example.org"}},
		Roles:        []models.Role{{ID: "stale", Name: "Stale", CapacityPerShift: 99}},
		Shifts:       []models.Shift{{ID: "night", DurationHours: 12}},
	}
	s.ReplaceState(snap)

	state := s.State()
	assert.Equal(t, catalog.Roles(), state.Roles)
	assert.Equal(t, catalog.Shifts(), state.Shifts)
	require.Len(t, state.Participants, 1)
	assert.Equal(t, "x1", state.Participants[0].ID)
	assert.Empty(t, state.ClinicDays)

	var deletes, upserts int
	for _, ch := range outbox.Drain() {
		if ch.Op == OpDelete {
			deletes++
		} else {
			upserts++
		}
	}
	assert.Equal(t, 3, deletes) // p1, p2, d1
	assert.Equal(t, 1, upserts)
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := catalog.SampleState()
	attended := true
	st.Assignments[0].Attended = &attended
	st.ShiftActuals = []models.ShiftActuals{{ID: "sa-1", ClinicDayID: "day-1", ShiftID: catalog.ShiftMorning, RoleID: "physician", PatientsServed: 12, StaffCount: 1, RecordedAt: fixedNow}}
	st.RoleCapacities = []models.RoleCapacity{{ClinicDayID: "day-1", ShiftID: catalog.ShiftMorning, RoleID: "nurse", Capacity: 2}}
	st.PatientRecords = []models.PatientRecord{{ID: "pr-1", PatientName: "Luis", ClinicDayID: "day-1", CreatedBy: "ana@example.org", CreatedAt: fixedNow,
		Medications: []models.Medication{{Name: "Amoxicillin", Dose: "500mg", Frequency: "tid", PharmacyItemID: "rx-amox", Deducted: true}}}}
	source, _ := newTestStore(t, st)

	var buf bytes.Buffer
	require.NoError(t, models.EncodeSnapshot(&buf, source.Snapshot(SessionFor("p-ana"))))

	snap, err := models.DecodeSnapshot(&buf)
	require.NoError(t, err)
	require.NotNil(t, snap.CurrentUser)
	assert.Equal(t, "p-ana", snap.CurrentUser.ID)

	target, _ := newTestStore(t, models.State{})
	target.ReplaceState(snap)

	assert.Equal(t, source.State(), target.State())
}

func TestDecodeSnapshot_InvalidFormat(t *testing.T) {
	bodies := map[string]string{
		"not json":           "not json",
		"missing id":         `{"participants":[{"name":"no id"}],"clinicDays":[]}`,
		"null":               "null",
		"empty object":       "{}",
		"trailing garbage":   `{"participants":[],"clinicDays":[]} trailing garbage`,
		"second document":    `{"participants":[],"clinicDays":[]} {}`,
		"array":              "[]",
		"string":             `"hello"`,
		"null collections":   `{"participants":null,"clinicDays":null}`,
		"missing clinicDays": `{"participants":[]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := models.DecodeSnapshot(bytes.NewBufferString(body))
			assert.ErrorIs(t, err, models.ErrInvalidFormat)
		})
	}
}

func TestDecodeSnapshot_MinimalDocument(t *testing.T) {
	snap, err := models.DecodeSnapshot(bytes.NewBufferString(`{"participants":[],"clinicDays":[]}`))
	require.NoError(t, err)
	assert.Empty(t, snap.Participants)
}

func TestImportedFlowRatesSurviveRemoteEcho(t *testing.T) {
	body := `{"participants":[],"clinicDays":[],"flowRates":{"physician":{"rate":9,"source":"actual"}}}`
	snap, err := models.DecodeSnapshot(bytes.NewBufferString(body))
	require.NoError(t, err)

	s, outbox := newTestStore(t, baseState())
	s.ReplaceState(snap)
	require.Equal(t, "physician", s.State().FlowRates["physician"].RoleID)

	var docs []json.RawMessage
	for _, ch := range outbox.Drain() {
		if ch.Collection != models.CollectionFlowRates || ch.Op != OpUpsert {
			continue
		}
		doc, err := json.Marshal(ch.Doc)
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	require.NoError(t, s.ApplyRemote(models.CollectionFlowRates, docs))

	assert.Equal(t, 9.0, s.State().FlowRates["physician"].Rate)
}

func TestApplyRemote(t *testing.T) {
	s, outbox := newTestStore(t, baseState())

	doc, err := json.Marshal(models.FlowRate{RoleID: "nurse", Rate: 7.5, Source: models.SourceActual})
	require.NoError(t, err)
	require.NoError(t, s.ApplyRemote(models.CollectionFlowRates, []json.RawMessage{doc}))
	assert.Equal(t, 7.5, s.State().FlowRates["nurse"].Rate)

	require.NoError(t, s.ApplyRemote(models.CollectionParticipants, nil))
	assert.Empty(t, s.State().Participants)

	err = s.ApplyRemote(models.CollectionClinicDays, []json.RawMessage{json.RawMessage(`"bad"`)})
	assert.Error(t, err)
	assert.Len(t, s.State().ClinicDays, 1)

	assert.Error(t, s.ApplyRemote("unknown", nil))
	assert.Equal(t, 0, outbox.Len())
}
