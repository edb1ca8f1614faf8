package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	// Simple creation with defaults
//	h := testutil.NewHolding().Build()
//
//	// Customized holding
//	h := testutil.NewHolding().
//	    WithName("AAPL").
//	    WithPrices(100, 150).
//	    WithAmount(10).
//	    Build()
type HoldingBuilder struct {
	Name          string
	PurchasePrice float64
	CurrentPrice  float64
	Amount        float64
	PurchaseDate  model.Date
	TargetPrice   *float64
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding() *HoldingBuilder {
	return &HoldingBuilder{
		Name:          MakeSymbol("TST"),
		PurchasePrice: 100,
		CurrentPrice:  100,
		Amount:        1,
		PurchaseDate:  model.NewDate(2024, time.January, 15),
	}
}

// WithName sets a custom name.
func (b *HoldingBuilder) WithName(name string) *HoldingBuilder {
	b.Name = name
	return b
}

// WithPrices sets purchase and current price.
func (b *HoldingBuilder) WithPrices(purchase, current float64) *HoldingBuilder {
	b.PurchasePrice = purchase
	b.CurrentPrice = current
	return b
}

// WithAmount sets the quantity held.
func (b *HoldingBuilder) WithAmount(amount float64) *HoldingBuilder {
	b.Amount = amount
	return b
}

// WithDate sets the purchase date.
func (b *HoldingBuilder) WithDate(year int, month time.Month, day int) *HoldingBuilder {
	b.PurchaseDate = model.NewDate(year, month, day)
	return b
}

// WithTarget sets a target price.
func (b *HoldingBuilder) WithTarget(target float64) *HoldingBuilder {
	b.TargetPrice = &target
	return b
}

// Build returns the holding. Nothing is persisted.
func (b *HoldingBuilder) Build() model.Holding {
	h := model.Holding{
		Name:          b.Name,
		PurchasePrice: b.PurchasePrice,
		CurrentPrice:  b.CurrentPrice,
		Amount:        b.Amount,
		PurchaseDate:  b.PurchaseDate,
	}
	if b.TargetPrice != nil {
		target := *b.TargetPrice
		h.TargetPrice = &target
	}
	return h
}

// AlertBuilder provides a fluent interface for creating target alert rows.
type AlertBuilder struct {
	ID           string
	Name         string
	TargetPrice  float64
	CurrentPrice float64
	TriggeredAt  time.Time
}

// NewAlert creates an AlertBuilder with sensible defaults.
func NewAlert() *AlertBuilder {
	return &AlertBuilder{
		ID:           MakeID(),
		Name:         MakeSymbol("ALR"),
		TargetPrice:  50,
		CurrentPrice: 50,
		TriggeredAt:  time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WithName sets a custom name.
func (b *AlertBuilder) WithName(name string) *AlertBuilder {
	b.Name = name
	return b
}

// WithTriggeredAt sets the trigger time.
func (b *AlertBuilder) WithTriggeredAt(at time.Time) *AlertBuilder {
	b.TriggeredAt = at
	return b
}

// Build inserts the alert into the database and returns it.
func (b *AlertBuilder) Build(t *testing.T, db *sql.DB) model.TargetReached {
	t.Helper()

	a := model.TargetReached{
		ID:           b.ID,
		Name:         b.Name,
		TargetPrice:  b.TargetPrice,
		CurrentPrice: b.CurrentPrice,
		TriggeredAt:  b.TriggeredAt.UTC(),
	}

	_, err := db.Exec(`
		INSERT INTO target_alert (id, name, target_price, current_price, triggered_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.TargetPrice, a.CurrentPrice, a.TriggeredAt)
	if err != nil {
		t.Fatalf("Failed to create alert: %v", err)
	}

	return a
}
