package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const snapshotFilename = "state.json"

// FileStore persists the snapshot as a single JSON file. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// truncated snapshot behind.
type FileStore struct {
	basePath string
}

// NewFileStore creates a FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) path() string {
	return filepath.Join(s.basePath, snapshotFilename)
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmpPath := s.path() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path()); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file yields an empty snapshot so a
// first run starts clean.
func (s *FileStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Exists reports whether a snapshot file has been written.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path())
	return !os.IsNotExist(err)
}
