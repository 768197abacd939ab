package cart

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"genwear/internal/domain"
)

// FileStore caches the cart snapshot as a JSON file per device, standing in
// for browser local storage. Load treats a missing or unparsable file as an
// empty cart rather than an error the session could trip over.
type FileStore struct {
	path string
}

// NewFileStore places the snapshot under dir, named by device id.
func NewFileStore(dir, deviceID string) *FileStore {
	return &FileStore{path: filepath.Join(dir, deviceID+".cart.json")}
}

func (s *FileStore) Load() ([]domain.CartLine, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, nil
	}
	return lines, nil
}

func (s *FileStore) Save(lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// MemoryStore is an in-process LocalStore used by tests and short-lived
// sessions. It round-trips through JSON so it exercises the same
// serialization path as FileStore.
type MemoryStore struct {
	raw []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]domain.CartLine, error) {
	if s.raw == nil {
		return nil, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(s.raw, &lines); err != nil {
		return nil, nil
	}
	return lines, nil
}

func (s *MemoryStore) Save(lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	s.raw = raw
	return nil
}
