package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/podcast-studio/internal/schemas"
	"github.com/jonathan/podcast-studio/internal/types"
)

// snapshotSchema guards snapshot files against manual edits or partial
// writes before they are trusted on read-through.
const snapshotSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["status", "transcript", "speakers", "voice_names"],
	"properties": {
		"status":       {"type": "string", "enum": ["pending", "transcribing", "improving", "streaming", "done", "error"]},
		"title":        {"type": "string"},
		"transcript":   {"type": "string"},
		"speakers":     {"type": "integer", "minimum": 1},
		"voices":       {"type": "array", "items": {"type": "string"}},
		"use_internet": {"type": "boolean"},
		"saved":        {"type": "boolean"},
		"category":     {"type": "string"},
		"saved_at":     {"type": "string"},
		"theme":        {"type": "string"},
		"geo_location": {"type": "string"},
		"voice_names":  {"type": "array", "items": {"type": "string"}},
		"language":     {"type": "string"},
		"truncated":    {"type": "boolean"}
	}
}`

// SnapshotStore persists one JSON blob per completed job under a directory.
type SnapshotStore struct {
	dir    string
	schema *gojsonschema.Schema
}

// NewSnapshotStore creates the directory if needed and compiles the
// snapshot schema.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	schema, err := schemas.Compile(snapshotSchema)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{dir: dir, schema: schema}, nil
}

// Save writes the snapshot blob for a job id.
func (s *SnapshotStore) Save(id string, snap *types.Snapshot) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads and validates the snapshot blob for a job id. Returns
// (nil, nil) when no snapshot exists.
func (s *SnapshotStore) Load(id string) (*types.Snapshot, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := schemas.ValidateBytes(s.schema, data); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", id, err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// List returns the job ids of every snapshot blob on disk.
func (s *SnapshotStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Delete removes the snapshot file. Missing files are not an error.
func (s *SnapshotStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// path resolves the blob file for a job id, refusing ids that could
// escape the snapshot directory.
func (s *SnapshotStore) path(id string) (string, error) {
	if id == "" || filepath.Base(id) != id {
		return "", fmt.Errorf("invalid job id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
