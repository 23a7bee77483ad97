package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mission-clinic-server/internal/catalog"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
)

type fakeRemote struct {
	mu       sync.Mutex
	upserts  []string
	deletes  []string
	failWith error
	docs     map[string][]json.RawMessage
}

func (f *fakeRemote) GetAll(_ context.Context, collection string) ([]json.RawMessage, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.docs[collection], nil
}

func (f *fakeRemote) Upsert(_ context.Context, collection, id string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, collection+"/"+id)
	return f.failWith
}

func (f *fakeRemote) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, collection+"/"+id)
	return f.failWith
}

func (f *fakeRemote) Subscribe(_ context.Context, _ string, _ func([]json.RawMessage)) (func(), error) {
	return nil, ErrNotConfigured
}

func (f *fakeRemote) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

type fakeLocal struct {
	saves int
	last  models.Snapshot
	err   error
}

func (f *fakeLocal) Load() (models.Snapshot, error) { return f.last, nil }

func (f *fakeLocal) Save(s models.Snapshot) error {
	f.saves++
	f.last = s
	return f.err
}

func newStoreWithOutbox() (*store.Store, *store.Outbox) {
	outbox := store.NewOutbox()
	return store.New(catalog.SampleState(), zap.NewNop(), store.WithOutbox(outbox)), outbox
}

func TestFileStore_SaveLoad(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nested", "snapshot.json"))
	st := catalog.SampleState()
	snap := st.ToSnapshot(nil)

	require.NoError(t, fs.Save(snap))
	loaded, err := fs.Load()
	require.NoError(t, err)

	assert.Equal(t, snap, loaded)
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := fs.Load()
	assert.Error(t, err)
}

func TestSyncer_FlushWritesRemoteAndLocal(t *testing.T) {
	s, outbox := newStoreWithOutbox()
	remote := &fakeRemote{}
	local := &fakeLocal{}
	sy := NewSyncer(s, outbox, remote, local, zap.NewNop())

	_, ok := s.AddAssignment(store.SessionFor("p-ana"), "day-2", catalog.ShiftMorning, "physician")
	require.True(t, ok)
	s.RemoveAssignment("a-1")

	sy.Flush(context.Background())

	assert.Len(t, remote.upserts, 1)
	assert.Equal(t, []string{"assignments/a-1"}, remote.deletes)
	assert.Equal(t, 1, local.saves)
	assert.Len(t, local.last.Assignments, 4)
	assert.Equal(t, 0, outbox.Len())

	sy.Flush(context.Background())
	assert.Equal(t, 1, local.saves)
}

func TestSyncer_SwallowsRemoteErrors(t *testing.T) {
	s, outbox := newStoreWithOutbox()
	remote := &fakeRemote{failWith: errors.New("connection refused")}
	local := &fakeLocal{err: errors.New("disk full")}
	sy := NewSyncer(s, outbox, remote, local, zap.NewNop())

	s.UpdateFlowRate(models.FlowRate{RoleID: "nurse", Rate: 5, Source: models.SourceActual})
	sy.Flush(context.Background())

	assert.Equal(t, 5.0, s.State().FlowRates["nurse"].Rate)
	assert.Len(t, remote.upserts, 1)
	assert.Equal(t, 0, outbox.Len())
}

func TestSyncer_RunDrainsUntilCancelled(t *testing.T) {
	s, outbox := newStoreWithOutbox()
	remote := &fakeRemote{}
	sy := NewSyncer(s, outbox, remote, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sy.Run(ctx)
		close(done)
	}()

	s.AddClinicDay(models.ClinicDay{Date: "2025-01-09", Name: "Day 4"})
	assert.Eventually(t, func() bool { return remote.upsertCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("syncer did not stop")
	}
}

func TestSyncer_Hydrate(t *testing.T) {
	s, outbox := newStoreWithOutbox()
	day, err := json.Marshal(models.ClinicDay{ID: "remote-day", Date: "2025-02-01"})
	require.NoError(t, err)
	remote := &fakeRemote{docs: map[string][]json.RawMessage{
		models.CollectionClinicDays: {day},
	}}
	sy := NewSyncer(s, outbox, remote, nil, zap.NewNop())

	sy.Hydrate(context.Background())

	state := s.State()
	require.Len(t, state.ClinicDays, 1)
	assert.Equal(t, "remote-day", state.ClinicDays[0].ID)
	assert.Empty(t, state.Participants)
	assert.Equal(t, 0, outbox.Len())
}

func TestSyncer_HydrateSeedsEmptyRemote(t *testing.T) {
	s, outbox := newStoreWithOutbox()
	remote := &fakeRemote{}
	sy := NewSyncer(s, outbox, remote, nil, zap.NewNop())

	sy.Hydrate(context.Background())

	assert.Len(t, s.State().ClinicDays, 3)
	require.Greater(t, outbox.Len(), 0)

	sy.Flush(context.Background())
	assert.Contains(t, remote.upserts, models.CollectionClinicDays+"/day-1")
	assert.Contains(t, remote.upserts, models.CollectionAssignments+"/a-4")
}

func TestSyncer_HydrateKeepsStateOnFailure(t *testing.T) {
	s, outbox := newStoreWithOutbox()
	sy := NewSyncer(s, outbox, &fakeRemote{failWith: errors.New("timeout")}, nil, zap.NewNop())

	sy.Hydrate(context.Background())

	assert.Len(t, s.State().ClinicDays, 3)
	sy.SubscribeAll(context.Background())()
}

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNotifier_PublishSubscribe(t *testing.T) {
	client := newTestRedis(t)
	n := NewNotifier(client, "clinic:", zap.NewNop())
	ctx := context.Background()

	got := make(chan struct{}, 1)
	unsubscribe, err := n.Subscribe(ctx, models.CollectionAssignments, func() {
		got <- struct{}{}
	})
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, n.Publish(ctx, models.CollectionAssignments))

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
	}

	unsubscribe()
	unsubscribe()
}

func TestRedisDenylist(t *testing.T) {
	client := newTestRedis(t)
	d := NewRedisDenylist(client, "clinic:revoked:")
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "token-1", time.Minute))
	revoked, err = d.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, d.Revoke(ctx, "token-2", 0))
	revoked, err = d.IsRevoked(ctx, "token-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryDenylist_Expires(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "token-1", time.Minute))
	revoked, _ := d.IsRevoked(ctx, "token-1")
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = d.IsRevoked(ctx, "token-1")
	assert.False(t, revoked)
}
