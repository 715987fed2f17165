package database

import (
	"context"
	"testing"
)

// setupTestDB creates a migrated in-memory SQLite database for testing
func setupTestDB(t *testing.T) (*DB, func()) {
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return db, func() {
		db.Close()
	}
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// Running the migrations a second time must be a no-op
	if err := migrate(context.Background(), db.db.DB); err != nil {
		t.Fatalf("Expected second migration run to succeed, got %v", err)
	}

	var tables []string
	err := db.db.Select(&tables, "SELECT name FROM sqlite_master WHERE type='table' AND name IN ('xp', 'member_roles') ORDER BY name")
	if err != nil {
		t.Fatalf("Failed to list tables: %v", err)
	}
	if len(tables) != 2 || tables[0] != "member_roles" || tables[1] != "xp" {
		t.Errorf("Expected tables [member_roles xp], got %v", tables)
	}
}
