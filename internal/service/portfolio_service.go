package service

import (
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// HoldingStore is the persistence the portfolio writes through to.
// Load reports false when nothing usable is stored.
type HoldingStore interface {
	Load() ([]model.Holding, bool)
	Save(holdings []model.Holding) error
}

// PortfolioService is the authoritative in-memory portfolio.
// Every mutation is persisted before it returns (write-through). Persistence
// failures are logged and never surfaced: the in-memory state stays current.
type PortfolioService struct {
	store    HoldingStore
	logger   *zap.Logger
	location *time.Location

	// mu guards holdings and is held across the mutation and its save,
	// so saves happen in mutation order.
	mu       sync.Mutex
	holdings []model.Holding
}

// NewPortfolioService creates a PortfolioService. location is the calendar used
// to date holdings added without a purchase date; nil means time.Local.
func NewPortfolioService(store HoldingStore, logger *zap.Logger, location *time.Location) *PortfolioService {
	if location == nil {
		location = time.Local
	}
	return &PortfolioService{
		store:    store,
		logger:   logger,
		location: location,
	}
}

// Initialize loads the stored portfolio. When nothing usable is stored it
// adopts defaults and overwrites storage with them; otherwise the stored
// holdings are used and defaults are ignored. Holdings without a purchase
// date, stored or default, are dated today; stored ones are then written back.
func (s *PortfolioService) Initialize(defaults []model.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loaded, ok := s.store.Load(); ok {
		s.holdings = loaded
		s.logger.Info("portfolio loaded", zap.Int("holdings", len(loaded)))
		if n := s.backfillDates(); n > 0 {
			s.logger.Info("dated holdings without a purchase date", zap.Int("holdings", n))
			s.persist()
		}
		return
	}

	s.holdings = slices.Clone(defaults)
	if s.holdings == nil {
		s.holdings = []model.Holding{}
	}
	s.backfillDates()
	s.logger.Info("portfolio initialized with defaults", zap.Int("holdings", len(s.holdings)))
	s.persist()
}

// backfillDates sets every zero purchase date to today and returns how many changed.
// The caller holds s.mu.
func (s *PortfolioService) backfillDates() int {
	today := model.Today(s.location)
	n := 0
	for i := range s.holdings {
		if s.holdings[i].PurchaseDate.IsZero() {
			s.holdings[i].PurchaseDate = today
			n++
		}
	}
	return n
}

// Add appends h to the portfolio and returns it as stored. A zero purchase
// date becomes today. Values are not validated: negative prices and amounts
// are kept as given.
func (s *PortfolioService) Add(h model.Holding) model.Holding {
	if h.PurchaseDate.IsZero() {
		h.PurchaseDate = model.Today(s.location)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.holdings = append(s.holdings, h)
	s.persist()
	return h
}

// ReplacePrices sets the current price of every holding whose name is a key of
// updates. Holdings sharing a name all receive the same price. Nothing but
// CurrentPrice is changed.
func (s *PortfolioService) ReplacePrices(updates map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.holdings {
		if price, ok := updates[s.holdings[i].Name]; ok {
			s.holdings[i].CurrentPrice = price
		}
	}
	s.persist()
}

// Holdings returns a snapshot of the portfolio in insertion order.
func (s *PortfolioService) Holdings() []model.Holding {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Holding, len(s.holdings))
	copy(out, s.holdings)
	return out
}

// TotalProfit returns the summed profit of the current portfolio.
func (s *PortfolioService) TotalProfit() float64 {
	return TotalProfit(s.Holdings())
}

// MonthlyProfits returns the current portfolio's profit per purchase month.
func (s *PortfolioService) MonthlyProfits() []model.MonthlyProfitPoint {
	return MonthlyProfits(s.Holdings())
}

// persist must be called with s.mu held.
func (s *PortfolioService) persist() {
	if err := s.store.Save(s.holdings); err != nil {
		s.logger.Error("persisting portfolio", zap.Int("holdings", len(s.holdings)), zap.Error(err))
	}
}

// Profit returns (CurrentPrice - PurchasePrice) * Amount.
func Profit(h model.Holding) float64 {
	return profitDecimal(h).InexactFloat64()
}

// TotalProfit sums the profit of holdings; 0 for none. The sum is exact
// decimal arithmetic, so it does not depend on the order of holdings.
func TotalProfit(holdings []model.Holding) float64 {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(profitDecimal(h))
	}
	return total.InexactFloat64()
}

// MonthlyProfits groups holdings by the year and month of their purchase date,
// sums profit per group and returns one point per month, oldest first.
func MonthlyProfits(holdings []model.Holding) []model.MonthlyProfitPoint {
	sums := make(map[model.Date]decimal.Decimal)
	for _, h := range holdings {
		month := h.PurchaseDate.FirstOfMonth()
		sums[month] = sums[month].Add(profitDecimal(h))
	}

	months := make([]model.Date, 0, len(sums))
	for month := range sums {
		months = append(months, month)
	}
	slices.SortFunc(months, func(a, b model.Date) int {
		return a.Time().Compare(b.Time())
	})

	points := make([]model.MonthlyProfitPoint, 0, len(months))
	for _, month := range months {
		points = append(points, model.MonthlyProfitPoint{
			Month:  month.Time().Format("2006-01"),
			Profit: sums[month].InexactFloat64(),
		})
	}
	return points
}

func profitDecimal(h model.Holding) decimal.Decimal {
	current := decimal.NewFromFloat(h.CurrentPrice)
	purchase := decimal.NewFromFloat(h.PurchasePrice)
	return current.Sub(purchase).Mul(decimal.NewFromFloat(h.Amount))
}
