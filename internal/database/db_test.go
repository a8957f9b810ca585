package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(context.Background()); err != nil {
		t.Errorf("ping failed: %v", err)
	}
	if db.Conn() == nil {
		t.Error("expected a usable connection")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := setupTestDB(t)

	// Running migrations again must be a no-op.
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var version int
	err := db.Conn().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("expected schema version %d, got %d", len(migrations), version)
	}

	var applied int
	err = db.Conn().QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&applied)
	if err != nil {
		t.Fatalf("failed to count applied migrations: %v", err)
	}
	if applied != len(migrations) {
		t.Errorf("expected %d applied migrations, got %d", len(migrations), applied)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := setupTestDB(t)

	var enabled int
	if err := db.Conn().QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("failed to read foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Error("expected foreign key enforcement to be on")
	}

	// An orphan review must be rejected.
	_, err := db.Conn().Exec(`
		INSERT INTO reviews (project_id, content, created_at, analyzed_at)
		VALUES (999, 'orphan', 0, 0)
	`)
	if err == nil {
		t.Error("expected foreign key violation for orphan review")
	}
}
