package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/notify"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/quote"
)

// DefaultRefreshInterval is the documented price refresh period.
const DefaultRefreshInterval = 60 * time.Second

// RefreshService periodically refreshes current prices from a quote provider,
// writes them back through the PortfolioService and emits target-reached
// notifications.
//
// Ticks may overlap when a refresh takes longer than the interval. Each tick
// applies whatever it fetched when it completes, so the last completed write
// wins per holding.
type RefreshService struct {
	portfolio   *PortfolioService
	provider    quote.Provider
	notifier    notify.Notifier
	logger      *zap.Logger
	interval    time.Duration
	concurrency int

	cronMu sync.Mutex
	cron   *cron.Cron
	now    func() time.Time
}

// NewRefreshService creates a RefreshService. A non-positive interval means
// DefaultRefreshInterval; a non-positive concurrency means unbounded.
func NewRefreshService(
	portfolio *PortfolioService,
	provider quote.Provider,
	notifier notify.Notifier,
	logger *zap.Logger,
	interval time.Duration,
	concurrency int,
) *RefreshService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshService{
		portfolio:   portfolio,
		provider:    provider,
		notifier:    notifier,
		logger:      logger,
		interval:    interval,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Tick runs one refresh: fetch every distinct symbol, apply the prices that
// could be fetched, then notify for every holding sitting exactly on its target.
// A symbol whose fetch fails keeps its previous price until the next tick.
func (s *RefreshService) Tick(ctx context.Context) model.RefreshResult {
	start := s.now()
	symbols := distinctNames(s.portfolio.Holdings())

	var (
		mu      sync.Mutex
		updates = make(map[string]float64, len(symbols))
		failed  = []string{}
	)

	// Not WithContext: one failed symbol must not cancel the others.
	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for _, symbol := range symbols {
		g.Go(func() error {
			price, err := s.provider.FetchLatestPrice(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, symbol)
				s.logger.Warn("quote unavailable, keeping previous price",
					zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			if math.IsNaN(price) || math.IsInf(price, 0) {
				failed = append(failed, symbol)
				s.logger.Warn("non-finite quote, keeping previous price",
					zap.String("symbol", symbol), zap.Float64("price", price))
				return nil
			}
			updates[symbol] = price
			return nil
		})
	}
	_ = g.Wait()

	if len(updates) > 0 {
		s.portfolio.ReplacePrices(updates)
	}

	alerts := s.evaluateTargets(ctx)
	slices.Sort(failed)

	s.logger.Debug("price refresh finished",
		zap.Int("symbols", len(symbols)),
		zap.Int("updated", len(updates)),
		zap.Int("failed", len(failed)),
		zap.Int("alerts", len(alerts)),
		zap.Duration("took", s.now().Sub(start)),
	)

	return model.RefreshResult{
		Updated: updates,
		Failed:  failed,
		Alerts:  alerts,
	}
}

// evaluateTargets notifies for every holding whose current price equals its target.
// There is no memory of earlier ticks: a holding that stays on target is reported every tick.
func (s *RefreshService) evaluateTargets(ctx context.Context) []model.TargetReached {
	alerts := []model.TargetReached{}
	for _, h := range s.portfolio.Holdings() {
		if !h.AtTarget() {
			continue
		}
		alert := model.TargetReached{
			ID:           uuid.NewString(),
			Name:         h.Name,
			TargetPrice:  *h.TargetPrice,
			CurrentPrice: h.CurrentPrice,
			TriggeredAt:  s.now().UTC(),
		}
		s.notifier.Notify(ctx, alert)
		alerts = append(alerts, alert)
	}
	return alerts
}

// Start schedules Tick every interval. Ticks run with a background context so
// an in-flight refresh still applies its results after Stop.
func (s *RefreshService) Start() error {
	s.cronMu.Lock()
	defer s.cronMu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("refresh scheduler already started")
	}

	c := cron.New()
	schedule := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(schedule, func() { s.Tick(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule price refresh %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("price refresh scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops scheduling new ticks and waits for running ticks until ctx is done.
// Start and Stop are safe to call from different goroutines.
func (s *RefreshService) Stop(ctx context.Context) {
	s.cronMu.Lock()
	c := s.cron
	s.cron = nil
	s.cronMu.Unlock()

	if c == nil {
		return
	}
	done := c.Stop()

	select {
	case <-done.Done():
		s.logger.Info("price refresh scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("price refresh scheduler stopped with a refresh still running")
	}
}

func distinctNames(holdings []model.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	names := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if seen[h.Name] {
			continue
		}
		seen[h.Name] = true
		names = append(names, h.Name)
	}
	return names
}
