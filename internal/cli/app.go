package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"mission-clinic-server/internal/catalog"
	"mission-clinic-server/internal/config"
	"mission-clinic-server/internal/middleware"
	"mission-clinic-server/internal/models"
	"mission-clinic-server/internal/persistence"
	"mission-clinic-server/internal/store"
)

// app is the wired mission state with its boundary adapters.
type app struct {
	store    *store.Store
	syncer   *persistence.Syncer
	local    *persistence.FileStore
	remote   persistence.Remote
	redis    *redis.Client
	denylist middleware.Denylist
	logger   *zap.Logger
}

// bootstrap loads the state: remote first when enabled, then the local
// snapshot, then the sample data. Unreachable backends are logged and skipped.
func bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) *app {
	a := &app{
		local:    persistence.NewFileStore(cfg.SnapshotPath),
		denylist: persistence.NewMemoryDenylist(),
		logger:   logger,
	}

	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, push updates and shared logout disabled",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = client.Close()
		} else {
			a.redis = client
			a.denylist = persistence.NewRedisDenylist(client, cfg.Redis.ChannelPrefix+"revoked:")
		}
	}

	if cfg.RemoteSyncEnabled {
		db, err := models.InitDB(models.DatabaseConfig{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
		if err != nil {
			logger.Warn("remote store unreachable, running on the local snapshot",
				zap.String("driver", cfg.Database.Driver), zap.Error(err))
		} else {
			var notifier *persistence.Notifier
			if a.redis != nil {
				notifier = persistence.NewNotifier(a.redis, cfg.Redis.ChannelPrefix, logger)
			}
			a.remote = persistence.NewDocumentStore(db, notifier, logger)
		}
	}

	initial := catalog.SampleState()
	snap, err := a.local.Load()
	switch {
	case err == nil:
		initial = snap.ToState()
		logger.Info("loaded local snapshot", zap.String("path", a.local.Path()))
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("no local snapshot, starting from sample data", zap.String("path", a.local.Path()))
	default:
		logger.Warn("local snapshot unreadable, starting from sample data",
			zap.String("path", a.local.Path()), zap.Error(err))
	}

	outbox := store.NewOutbox()
	a.store = store.New(initial, logger, store.WithOutbox(outbox))
	a.syncer = persistence.NewSyncer(a.store, outbox, a.remote, a.local, logger)
	a.syncer.Hydrate(ctx)
	return a
}

// close flushes pending writes and releases connections.
func (a *app) close() {
	a.syncer.Flush(context.Background())
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
