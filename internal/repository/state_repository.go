package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
)

// StateRepository is a small key-value store on top of the app_state table.
// Values are opaque strings; callers own their serialization.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new StateRepository with the provided database connection.
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the value stored under key.
// Returns apperrors.ErrStateNotFound when the key has never been written.
func (s *StateRepository) Get(key string) (string, error) {
	query := `
          SELECT value
          FROM app_state
          WHERE key = ?
      `
	var value string

	err := s.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query app_state: %w", err)
	}

	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *StateRepository) Set(key, value string) error {
	query := `
          INSERT INTO app_state (key, value, updated_at)
          VALUES (?, ?, ?)
          ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
      `
	if _, err := s.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write app_state: %w", err)
	}
	return nil
}
