// Package notify delivers target-reached notifications.
//
// Notifiers never fail the caller: delivery problems are logged and dropped.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/repository"
)

// Notifier receives target-reached notifications.
type Notifier interface {
	Notify(ctx context.Context, alert model.TargetReached)
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, alert model.TargetReached) {
	for _, n := range m {
		n.Notify(ctx, alert)
	}
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, alert model.TargetReached) {
	n.logger.Info("target price reached",
		zap.String("alert_id", alert.ID),
		zap.String("name", alert.Name),
		zap.Float64("target_price", alert.TargetPrice),
		zap.Float64("current_price", alert.CurrentPrice),
	)
}

// HistoryNotifier records notifications in the target_alert table.
type HistoryNotifier struct {
	alertRepo *repository.AlertRepository
	logger    *zap.Logger
}

// NewHistoryNotifier creates a HistoryNotifier.
func NewHistoryNotifier(alertRepo *repository.AlertRepository, logger *zap.Logger) *HistoryNotifier {
	return &HistoryNotifier{
		alertRepo: alertRepo,
		logger:    logger,
	}
}

// Notify implements Notifier.
func (n *HistoryNotifier) Notify(_ context.Context, alert model.TargetReached) {
	if err := n.alertRepo.InsertAlert(alert); err != nil {
		n.logger.Warn("recording target alert", zap.String("name", alert.Name), zap.Error(err))
	}
}
