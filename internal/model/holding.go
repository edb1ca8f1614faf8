package model

import "time"

// Holding represents one purchased position. Several holdings may share a name,
// for example separate lots of the same stock.
type Holding struct {
	Name          string   `json:"name"`
	PurchasePrice float64  `json:"purchasePrice"`
	CurrentPrice  float64  `json:"currentPrice"`
	Amount        float64  `json:"amount"`
	PurchaseDate  Date     `json:"purchaseDate"`
	TargetPrice   *float64 `json:"targetPrice,omitempty"`
}

// AtTarget reports whether the current price sits exactly on the target price.
// Holdings without a target never match.
func (h Holding) AtTarget() bool {
	return h.TargetPrice != nil && h.CurrentPrice == *h.TargetPrice
}

// MonthlyProfitPoint is the summed profit of all holdings purchased in one calendar month.
type MonthlyProfitPoint struct {
	Month  string  `json:"month"` // YYYY-MM
	Profit float64 `json:"profit"`
}

// HoldingRow is a holding together with its computed profit, as shown in the portfolio table.
type HoldingRow struct {
	Holding
	Profit float64 `json:"profit"`
}

// PortfolioView is the flat, computed representation of the portfolio used for
// rendering and export. It is rebuilt on every request.
type PortfolioView struct {
	Rows          []HoldingRow         `json:"rows"`
	TotalProfit   float64              `json:"totalProfit"`
	MonthlySeries []MonthlyProfitPoint `json:"monthlySeries"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}

// TargetReached is emitted when a holding's current price equals its target price.
type TargetReached struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TargetPrice  float64   `json:"targetPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	TriggeredAt  time.Time `json:"triggeredAt"`
}

// RefreshResult summarizes one price refresh tick.
type RefreshResult struct {
	Updated map[string]float64 `json:"updated"` // symbol -> new price
	Failed  []string           `json:"failed"`  // symbols left unchanged
	Alerts  []TargetReached    `json:"alerts"`
}
