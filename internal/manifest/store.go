package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the whole manifestation list.
type Store interface {
	Load() ([]Manifestation, error)
	Save([]Manifestation) error
}

// FileStore keeps the list as a JSON array in a single file. A missing file
// loads as an empty list.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() ([]Manifestation, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []Manifestation
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return items, nil
}

// Save writes to a temporary file next to the target and renames it over.
func (s *FileStore) Save(items []Manifestation) error {
	if items == nil {
		items = []Manifestation{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifestations: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".manifestations-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps a copy of the list in memory.
type MemoryStore struct {
	mu    sync.Mutex
	items []Manifestation
	saves int
}

func NewMemoryStore(items ...Manifestation) *MemoryStore {
	return &MemoryStore{items: append([]Manifestation(nil), items...)}
}

func (s *MemoryStore) Load() ([]Manifestation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Manifestation(nil), s.items...), nil
}

func (s *MemoryStore) Save(items []Manifestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Manifestation(nil), items...)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
