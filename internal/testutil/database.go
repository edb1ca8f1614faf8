package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/database"
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The schema is created by the same embedded migrations production uses.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetState writes a raw value into app_state, bypassing the repositories.
// Useful for seeding malformed or legacy stored data.
func SetState(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		t.Fatalf("Failed to seed app_state: %v", err)
	}
}

// GetState reads a raw app_state value. It fails the test when the key is missing.
func GetState(t *testing.T, db *sql.DB, key string) string {
	t.Helper()

	var value string
	if err := db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value); err != nil {
		t.Fatalf("Failed to read app_state %q: %v", key, err)
	}
	return value
}
