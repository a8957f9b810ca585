package database

import (
	"path/filepath"
	"testing"
)

// setupTestDB opens a fresh migrated database under a per-test temp
// directory. The file is removed with the directory when the test ends.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "reviewpulse.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
