package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// HoldingsKey is the fixed key the portfolio is stored under.
const HoldingsKey = "investments"

// HoldingRepository persists the whole portfolio as one JSON array under HoldingsKey.
// It holds no business logic: every Save overwrites the previous value.
type HoldingRepository struct {
	state  *StateRepository
	logger *zap.Logger

	// mu serializes writes so a stale snapshot can never overtake a newer one.
	mu sync.Mutex
}

// NewHoldingRepository creates a new HoldingRepository on top of the key-value state store.
func NewHoldingRepository(state *StateRepository, logger *zap.Logger) *HoldingRepository {
	return &HoldingRepository{
		state:  state,
		logger: logger,
	}
}

// Load returns the stored holdings and true, or nil and false when nothing usable is stored.
//
// A missing key is the normal first-run case. Unreadable or malformed content is
// logged as apperrors.ErrStorageRead and also reported as empty, so the caller
// falls back to its defaults. Load never returns an error.
func (r *HoldingRepository) Load() ([]model.Holding, bool) {
	raw, err := r.state.Get(HoldingsKey)
	if errors.Is(err, apperrors.ErrStateNotFound) {
		return nil, false
	}
	if err != nil {
		r.logger.Error("reading stored portfolio",
			zap.Error(fmt.Errorf("%w: %w", apperrors.ErrStorageRead, err)))
		return nil, false
	}

	var holdings []model.Holding
	if err := json.Unmarshal([]byte(raw), &holdings); err != nil {
		r.logger.Error("parsing stored portfolio",
			zap.Error(fmt.Errorf("%w: %w", apperrors.ErrStorageRead, err)))
		return nil, false
	}
	if holdings == nil {
		// "null" is not a portfolio.
		r.logger.Error("parsing stored portfolio",
			zap.Error(fmt.Errorf("%w: stored value is null", apperrors.ErrStorageRead)))
		return nil, false
	}

	return holdings, true
}

// Save overwrites the stored portfolio with holdings.
func (r *HoldingRepository) Save(holdings []model.Holding) error {
	if holdings == nil {
		holdings = []model.Holding{}
	}

	data, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorageWrite, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.Set(HoldingsKey, string(data)); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorageWrite, err)
	}
	return nil
}
