package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mission-clinic-server/internal/models"
)

// DocumentStore is the remote backend: one document table in MySQL or Postgres,
// with redis pub/sub telling other instances which collection changed.
type DocumentStore struct {
	db       *gorm.DB
	notifier *Notifier
	logger   *zap.Logger
}

// NewDocumentStore creates a remote store. notifier may be nil, in which case
// Subscribe is unavailable.
func NewDocumentStore(db *gorm.DB, notifier *Notifier, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{db: db, notifier: notifier, logger: logger}
}

// GetAll returns every document of a collection.
func (d *DocumentStore) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var docs []models.Document
	if err := d.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("doc_id asc").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", collection, err)
	}

	out := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		out = append(out, json.RawMessage(doc.Data))
	}
	return out, nil
}

// Upsert writes one document and announces the change.
func (d *DocumentStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	row := models.Document{Collection: collection, DocID: id, Data: data}
	err = d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %s/%s: %w", collection, id, err)
	}

	d.announce(ctx, collection)
	return nil
}

// Delete removes one document and announces the change.
func (d *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	err := d.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&models.Document{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	d.announce(ctx, collection)
	return nil
}

// Subscribe re-reads the collection every time another writer announces a change.
func (d *DocumentStore) Subscribe(ctx context.Context, collection string, cb func([]json.RawMessage)) (func(), error) {
	if d.notifier == nil {
		return nil, ErrNotConfigured
	}
	return d.notifier.Subscribe(ctx, collection, func() {
		docs, err := d.GetAll(ctx, collection)
		if err != nil {
			d.logger.Warn("failed to refresh collection after push", zap.String("collection", collection), zap.Error(err))
			return
		}
		cb(docs)
	})
}

func (d *DocumentStore) announce(ctx context.Context, collection string) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Publish(ctx, collection); err != nil {
		d.logger.Warn("failed to publish collection change", zap.String("collection", collection), zap.Error(err))
	}
}
