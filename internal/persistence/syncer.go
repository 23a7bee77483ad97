package persistence

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/store"
)

// Syncer drains the store's outbox into the remote store and keeps the local
// snapshot current. Failures are logged and dropped; there is no retry.
type Syncer struct {
	store  *store.Store
	outbox *store.Outbox
	remote Remote
	local  Local
	logger *zap.Logger
}

// NewSyncer wires a syncer. remote and local may each be nil.
func NewSyncer(s *store.Store, outbox *store.Outbox, remote Remote, local Local, logger *zap.Logger) *Syncer {
	return &Syncer{store: s, outbox: outbox, remote: remote, local: local, logger: logger}
}

// Run flushes the outbox whenever it signals, until ctx ends. A final flush
// runs on the way out.
func (sy *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			sy.Flush(context.Background())
			return
		case <-sy.outbox.Ready():
			sy.Flush(ctx)
		}
	}
}

// Flush sends every pending change and saves the local snapshot once.
func (sy *Syncer) Flush(ctx context.Context) {
	changes := sy.outbox.Drain()
	if len(changes) == 0 {
		return
	}

	if sy.remote != nil {
		for _, ch := range changes {
			var err error
			switch ch.Op {
			case store.OpUpsert:
				err = sy.remote.Upsert(ctx, ch.Collection, ch.ID, ch.Doc)
			case store.OpDelete:
				err = sy.remote.Delete(ctx, ch.Collection, ch.ID)
			}
			if err != nil {
				sy.logger.Warn("remote write failed",
					zap.String("collection", ch.Collection),
					zap.String("op", string(ch.Op)),
					zap.String("id", ch.ID),
					zap.Error(err))
			}
		}
	}

	if sy.local != nil {
		if err := sy.local.Save(sy.store.Snapshot(nil)); err != nil {
			sy.logger.Warn("local snapshot save failed", zap.Error(err))
		}
	}

	sy.logger.Debug("outbox flushed", zap.Int("changes", len(changes)))
}

// Hydrate loads every collection from the remote store into the store.
// Collections that fail to load keep their current contents. A remote store
// with no documents at all is seeded from the current state instead.
func (sy *Syncer) Hydrate(ctx context.Context) {
	if sy.remote == nil {
		return
	}

	loaded := map[string][]json.RawMessage{}
	total := 0
	for _, name := range models.SyncedCollections {
		docs, err := sy.remote.GetAll(ctx, name)
		if err != nil {
			sy.logger.Warn("remote load failed", zap.String("collection", name), zap.Error(err))
			continue
		}
		loaded[name] = docs
		total += len(docs)
	}

	if total == 0 && len(loaded) == len(models.SyncedCollections) {
		n := sy.store.Republish()
		sy.logger.Info("remote store empty, seeding it from local state", zap.Int("documents", n))
		return
	}

	for _, name := range models.SyncedCollections {
		docs, ok := loaded[name]
		if !ok {
			continue
		}
		if err := sy.store.ApplyRemote(name, docs); err != nil {
			sy.logger.Warn("remote collection rejected", zap.String("collection", name), zap.Error(err))
		}
	}
}

// SubscribeAll applies remote pushes to the store for every collection. The
// returned function cancels all subscriptions.
func (sy *Syncer) SubscribeAll(ctx context.Context) func() {
	var cancels []func()
	if sy.remote != nil {
		for _, name := range models.SyncedCollections {
			collection := name
			cancel, err := sy.remote.Subscribe(ctx, collection, func(docs []json.RawMessage) {
				if err := sy.store.ApplyRemote(collection, docs); err != nil {
					sy.logger.Warn("push update rejected", zap.String("collection", collection), zap.Error(err))
				}
			})
			if err != nil {
				sy.logger.Warn("subscribe failed", zap.String("collection", collection), zap.Error(err))
				continue
			}
			cancels = append(cancels, cancel)
		}
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}
