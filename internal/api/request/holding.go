package request

// CreateHoldingRequest represents the request body for adding a holding.
// PurchaseDate is optional (YYYY-MM-DD); today is used when it is empty.
type CreateHoldingRequest struct {
	Name          string   `json:"name"`
	PurchasePrice float64  `json:"purchasePrice"`
	CurrentPrice  float64  `json:"currentPrice"`
	Amount        float64  `json:"amount"`
	PurchaseDate  string   `json:"purchaseDate"`
	TargetPrice   *float64 `json:"targetPrice,omitempty"`
}
