package config

import (
	"path/filepath"
	"testing"
)

func TestOpenDirectory_Memory(t *testing.T) {
	store, err := OpenDirectory(DirectoryConfig{Backend: BackendMemory}, "TESTBOX")
	if err != nil {
		t.Fatalf("OpenDirectory failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.MachineName() != "TESTBOX" {
		t.Errorf("Expected machine name 'TESTBOX', got %q", store.MachineName())
	}
}

func TestOpenDirectory_Badger(t *testing.T) {
	cfg := DirectoryConfig{
		Backend: BackendBadger,
		Badger:  BadgerConfig{Path: filepath.Join(t.TempDir(), "directory")},
	}

	store, err := OpenDirectory(cfg, "TESTBOX")
	if err != nil {
		t.Fatalf("OpenDirectory failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.MachineName() != "TESTBOX" {
		t.Errorf("Expected machine name 'TESTBOX', got %q", store.MachineName())
	}
}

func TestOpenDirectory_UnknownBackend(t *testing.T) {
	_, err := OpenDirectory(DirectoryConfig{Backend: "etcd"}, "TESTBOX")
	if err == nil {
		t.Fatal("Expected error for unknown backend")
	}
}

func TestOpenJournal_Memory(t *testing.T) {
	log, err := OpenJournal(JournalConfig{})
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	defer func() { _ = log.Close() }()

	entries, err := log.List(t.Context(), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty journal, got %d entries", len(entries))
	}
}

func TestOpenJournal_Badger(t *testing.T) {
	cfg := JournalConfig{Path: filepath.Join(t.TempDir(), "journal")}

	log, err := OpenJournal(cfg)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	defer func() { _ = log.Close() }()

	entries, err := log.List(t.Context(), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty journal, got %d entries", len(entries))
	}
}
