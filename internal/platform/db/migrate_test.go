package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_drives.sql":  "CREATE TABLE blood_drive (id UUID PRIMARY KEY);",
		"001_core.sql":    "CREATE TABLE donor (id UUID PRIMARY KEY);",
		"010_ledger.sql":  "ALTER TABLE donation ADD COLUMN ledger_tx_id TEXT;",
		"notes.txt":       "not a migration",
		"README.sql":      "no numeric prefix",
		"badprefix_x.sql": "no numeric prefix either",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantOrder := []int{1, 2, 10}
	for i, want := range wantOrder {
		if migrations[i].Version != want {
			t.Errorf("position %d: expected version %d, got %d", i, want, migrations[i].Version)
		}
	}
	if migrations[0].SQL == "" {
		t.Error("expected SQL content to be loaded")
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/path")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
