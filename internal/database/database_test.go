package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "portfolio.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() returned unexpected error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() returned unexpected error: %v", err)
	}
	// a second run has nothing to apply
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second Migrate() returned unexpected error: %v", err)
	}

	for _, table := range []string{"app_state", "target_alert"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}

	if err := HealthCheck(db); err != nil {
		t.Errorf("HealthCheck() returned unexpected error: %v", err)
	}

	db.Close()
	if err := HealthCheck(db); err == nil {
		t.Error("Expected HealthCheck() to fail on a closed database")
	}
}
