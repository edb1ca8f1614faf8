package testutil

import (
	"errors"
	"math/rand"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// MakeID generates a unique UUID for test entities.
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a unique ticker-like symbol with the given base prefix.
func MakeSymbol(base string) string {
	return base + randomAlphanumeric(4)
}

func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))] //nolint:gosec // test data only
	}
	return string(b)
}

// ErrMemoryStoreWrite is returned by MemoryStore.Save when FailSaves is set.
var ErrMemoryStoreWrite = errors.New("memory store write failed")

// MemoryStore is an in-memory holding store for service tests.
// It records every successful save.
type MemoryStore struct {
	mu        sync.Mutex
	holdings  []model.Holding
	stored    bool
	saves     [][]model.Holding
	FailSaves bool
}

// NewMemoryStore creates an empty store; Load reports nothing stored.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith creates a store already holding holdings.
func NewMemoryStoreWith(holdings ...model.Holding) *MemoryStore {
	return &MemoryStore{holdings: slices.Clone(holdings), stored: true}
}

// Load implements the holding store.
func (m *MemoryStore) Load() ([]model.Holding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.stored {
		return nil, false
	}
	return slices.Clone(m.holdings), true
}

// Save implements the holding store.
func (m *MemoryStore) Save(holdings []model.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves {
		return ErrMemoryStoreWrite
	}
	m.holdings = slices.Clone(holdings)
	m.stored = true
	m.saves = append(m.saves, slices.Clone(holdings))
	return nil
}

// Saved returns the last saved holdings.
func (m *MemoryStore) Saved() []model.Holding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.holdings)
}

// SaveCount returns how many saves succeeded.
func (m *MemoryStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}
