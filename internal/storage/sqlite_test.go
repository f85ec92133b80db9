package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/nikbrunner/boomarks/internal/storage"
)

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	if err := s.Save(testSession()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a session")
	}
	if *loaded != *testSession() {
		t.Errorf("expected %+v, got %+v", testSession(), loaded)
	}
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil session, got %+v", loaded)
	}
}

func TestSQLiteStorage_SaveReplaces(t *testing.T) {
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	first := testSession()
	second := testSession()
	second.DID = "did:plc:bob"
	second.AccessJwt = "access-2"

	if err := s.Save(first); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := s.Save(second); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if loaded.DID != "did:plc:bob" || loaded.AccessJwt != "access-2" {
		t.Errorf("expected second session, got %+v", loaded)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	loaded, _ = s.Load()
	if loaded != nil {
		t.Error("expected no session after clear")
	}
}

func TestSQLiteStorage_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := s.Save(testSession()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	s.Close()

	reopened, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer reopened.Close()

	version, err := reopened.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}

	loaded, err := reopened.Load()
	if err != nil || loaded == nil {
		t.Fatalf("expected session to survive reopen, got %v %v", loaded, err)
	}
}
