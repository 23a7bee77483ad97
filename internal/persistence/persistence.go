// Package persistence holds the boundary adapters of the mission state: a local
// snapshot file, a remote document store with push notifications, and the
// syncer that drains the store's outbox into them.
package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"mission-clinic-server/internal/models"
)

// ErrNotConfigured is returned when an optional backend is not set up.
var ErrNotConfigured = errors.New("backend not configured")

// Local reads and writes a whole-state snapshot on this machine.
type Local interface {
	Load() (models.Snapshot, error)
	Save(models.Snapshot) error
}

// Remote is a document store keyed by collection and document id.
type Remote interface {
	GetAll(ctx context.Context, collection string) ([]json.RawMessage, error)
	Upsert(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
	// Subscribe calls cb with the full collection whenever it changes remotely.
	Subscribe(ctx context.Context, collection string, cb func([]json.RawMessage)) (unsubscribe func(), err error)
}
