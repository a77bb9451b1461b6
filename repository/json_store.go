package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFileStore keeps one <kind>.json object per kind in a directory. Every
// Save reads the whole map, replaces one key and rewrites the file.
type JSONFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSONFileStore creates the data directory if needed
func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONFileStore{dir: dir}, nil
}

func (s *JSONFileStore) path(kind SignalKind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// readAll returns an empty map when the file does not exist yet
func (s *JSONFileStore) readAll(kind SignalKind) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", kind, err)
	}
	out := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return out, nil
}

// Save stores value under startupID
func (s *JSONFileStore) Save(ctx context.Context, kind SignalKind, startupID string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for %s: %w", kind, startupID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll(kind)
	if err != nil {
		return err
	}
	all[startupID] = raw

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	tmp, err := os.CreateTemp(s.dir, string(kind)+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", kind, err)
	}
	if err := os.Rename(tmpName, s.path(kind)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", kind, err)
	}
	return nil
}

// Load decodes the value stored under startupID into dest
func (s *JSONFileStore) Load(ctx context.Context, kind SignalKind, startupID string, dest interface{}) error {
	s.mu.Lock()
	all, err := s.readAll(kind)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	raw, ok := all[startupID]
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, startupID, ErrNotFound)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s for %s: %w", kind, startupID, err)
	}
	return nil
}

// LoadAll returns the whole map for a kind
func (s *JSONFileStore) LoadAll(ctx context.Context, kind SignalKind) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(kind)
}

var _ SignalStore = (*JSONFileStore)(nil)
