package service

import (
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/repository"
)

// DefaultAlertLimit is the number of alerts returned when the caller gives no limit.
const DefaultAlertLimit = 50

// AlertService exposes the history of target-reached notifications.
type AlertService struct {
	alertRepo *repository.AlertRepository
}

// NewAlertService creates a new AlertService with the provided repository dependency.
func NewAlertService(alertRepo *repository.AlertRepository) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
	}
}

// GetRecentAlerts returns at most limit alerts, newest first.
// A zero limit means DefaultAlertLimit.
func (s *AlertService) GetRecentAlerts(limit int) ([]model.TargetReached, error) {
	if limit < 0 {
		return nil, apperrors.ErrInvalidLimit
	}
	if limit == 0 {
		limit = DefaultAlertLimit
	}
	return s.alertRepo.GetRecentAlerts(limit)
}

// GetAlert returns a single alert by ID.
func (s *AlertService) GetAlert(id string) (model.TargetReached, error) {
	return s.alertRepo.GetAlert(id)
}
