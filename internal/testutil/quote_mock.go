package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
)

// MockQuoteProvider returns configured prices per symbol. Symbols without a
// price, or with an error configured, fail with apperrors.ErrQuoteUnavailable.
type MockQuoteProvider struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

// NewMockQuoteProvider creates a provider with no prices configured.
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// WithPrice configures the price returned for symbol.
func (m *MockQuoteProvider) WithPrice(symbol string, price float64) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
	delete(m.errs, symbol)
	return m
}

// WithError configures symbol to fail with err.
func (m *MockQuoteProvider) WithError(symbol string, err error) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
	return m
}

// FetchLatestPrice implements the quote provider.
func (m *MockQuoteProvider) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[symbol]++
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, symbol, err)
	}
	if err, ok := m.errs[symbol]; ok {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, symbol, err)
	}
	price, ok := m.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s: unknown symbol", apperrors.ErrQuoteUnavailable, symbol)
	}
	return price, nil
}

// Calls returns how many times symbol was fetched.
func (m *MockQuoteProvider) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}
