package persistence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"mission-clinic-server/internal/models"
)

// FileStore keeps the snapshot as a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the snapshot file.
func (f *FileStore) Load() (models.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := models.DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to parse snapshot %s: %w", f.path, err)
	}
	return snap, nil
}

// Save writes the snapshot through a temp file so a crash never leaves half a file.
func (f *FileStore) Save(snap models.Snapshot) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	var buf bytes.Buffer
	if err := models.EncodeSnapshot(&buf, snap); err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
