package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/boomarks/internal/auth"
	"github.com/nikbrunner/boomarks/internal/storage"
)

func testSession() *auth.Session {
	return &auth.Session{
		DID:        "did:plc:alice",
		Handle:     "alice.test",
		PDS:        "https://pds.example",
		AccessJwt:  "access",
		RefreshJwt: "refresh",
		UpdatedAt:  time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := storage.NewJSONStorage(path)
	if err := s.Save(testSession()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if *loaded != *testSession() {
		t.Errorf("expected %+v, got %+v", testSession(), loaded)
	}
}

func TestJSONStorage_LoadNonexistent(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "nonexistent.json"))

	session, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil session, got %+v", session)
	}
}

func TestJSONStorage_Clear(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "session.json"))
	if err := s.Save(testSession()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("expected second clear to be a no-op, got %v", err)
	}

	session, _ := s.Load()
	if session != nil {
		t.Error("expected no session after clear")
	}
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		file    string
	}{
		{"", "session.db"},
		{storage.BackendSQLite, "session.db"},
		{storage.BackendJSON, "session.json"},
	}

	for _, tt := range tests {
		s, err := storage.OpenStorage(tt.backend, dir)
		if err != nil {
			t.Fatalf("OpenStorage(%q): %v", tt.backend, err)
		}
		if filepath.Base(s.Path()) != tt.file {
			t.Errorf("OpenStorage(%q): expected %s, got %s", tt.backend, tt.file, s.Path())
		}
		s.Close()
	}

	if _, err := storage.OpenStorage("postgres", dir); err == nil {
		t.Error("expected error for unknown backend")
	}
}
