package repository

import (
	"database/sql"
	"fmt"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// AlertRepository provides data access for the target_alert history table.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new AlertRepository with the provided database connection.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// InsertAlert records one target-reached notification.
func (s *AlertRepository) InsertAlert(a model.TargetReached) error {
	query := `
          INSERT INTO target_alert (id, name, target_price, current_price, triggered_at)
          VALUES (?, ?, ?, ?, ?)
      `
	_, err := s.db.Exec(query, a.ID, a.Name, a.TargetPrice, a.CurrentPrice, a.TriggeredAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert target alert: %w", err)
	}
	return nil
}

// GetRecentAlerts returns at most limit alerts, newest first.
// Returns an empty slice if no alerts have been recorded.
func (s *AlertRepository) GetRecentAlerts(limit int) ([]model.TargetReached, error) {
	query := `
          SELECT id, name, target_price, current_price, triggered_at
          FROM target_alert
          ORDER BY triggered_at DESC, rowid DESC
          LIMIT ?
      `
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query target_alert table: %w", err)
	}
	defer rows.Close()

	alerts := []model.TargetReached{}

	for rows.Next() {
		var a model.TargetReached

		err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.TargetPrice,
			&a.CurrentPrice,
			&a.TriggeredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan target_alert table results: %w", err)
		}

		alerts = append(alerts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating target_alert table: %w", err)
	}

	return alerts, nil
}

// GetAlert returns the alert with the given ID.
// Returns apperrors.ErrAlertNotFound when it does not exist.
func (s *AlertRepository) GetAlert(id string) (model.TargetReached, error) {
	query := `
          SELECT id, name, target_price, current_price, triggered_at
          FROM target_alert
          WHERE id = ?
      `
	var a model.TargetReached

	err := s.db.QueryRow(query, id).Scan(
		&a.ID,
		&a.Name,
		&a.TargetPrice,
		&a.CurrentPrice,
		&a.TriggeredAt,
	)
	if err == sql.ErrNoRows {
		return model.TargetReached{}, apperrors.ErrAlertNotFound
	}
	if err != nil {
		return model.TargetReached{}, fmt.Errorf("failed to query target alert: %w", err)
	}

	return a, nil
}
