package store

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestStore creates a Store backed by a file in a temp directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// Verify the database file doesn't exist yet
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"episodes", "training_runs", "settings"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Episodes().Create(&Episode{Ticks: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	list, err := s.Episodes().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("episodes after reopen = %d, want 1", len(list))
	}
}

func TestStore_Close(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}

	// After closing, DB operations should fail
	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestStore_IndexesCreated(t *testing.T) {
	s := newTestStore(t)

	indexes := []string{
		"idx_episodes_started_at",
		"idx_training_runs_started_at",
	}
	for _, idx := range indexes {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
			idx,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %q should exist after migrations: %v", idx, err)
		}
	}
}
