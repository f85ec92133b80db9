// Package storage persists the signed-in session and the configuration.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/boomarks/internal/auth"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Storage persists at most one auth.Session.
type Storage interface {
	auth.Store
	Path() string
	Close() error
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the session from the JSON file.
// Returns nil if the file doesn't exist.
func (s *JSONStorage) Load() (*auth.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var session auth.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if session.DID == "" {
		return nil, nil
	}

	return &session, nil
}

// Save writes the session to the JSON file.
// The file holds tokens, so it is only readable by the owner.
func (s *JSONStorage) Save(session *auth.Session) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the session file.
func (s *JSONStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op for file storage.
func (s *JSONStorage) Close() error {
	return nil
}

// DefaultDir returns ~/.config/boomarks.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "boomarks"), nil
}

// OpenStorage opens the session backend named by backend inside dir.
// An empty dir uses DefaultDir.
func OpenStorage(backend, dir string) (Storage, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	switch backend {
	case "", BackendSQLite:
		return NewSQLiteStorage(filepath.Join(dir, "session.db"))
	case BackendJSON:
		return NewJSONStorage(filepath.Join(dir, "session.json")), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
