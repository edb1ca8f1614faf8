package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHolding_AtTarget(t *testing.T) {
	target := 50.0

	tests := []struct {
		name    string
		holding Holding
		want    bool
	}{
		{name: "no target", holding: Holding{CurrentPrice: 50}, want: false},
		{name: "exactly on target", holding: Holding{CurrentPrice: 50, TargetPrice: &target}, want: true},
		{name: "above target", holding: Holding{CurrentPrice: 50.01, TargetPrice: &target}, want: false},
		{name: "below target", holding: Holding{CurrentPrice: 49.99, TargetPrice: &target}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.holding.AtTarget(); got != tt.want {
				t.Errorf("AtTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHolding_JSON(t *testing.T) {
	t.Run("uses camelCase keys and omits missing target", func(t *testing.T) {
		h := Holding{
			Name:          "AAPL",
			PurchasePrice: 100,
			CurrentPrice:  150,
			Amount:        10,
			PurchaseDate:  NewDate(2024, time.January, 15),
		}

		data, err := json.Marshal(h)
		if err != nil {
			t.Fatalf("Marshal returned error: %v", err)
		}

		want := `{"name":"AAPL","purchasePrice":100,"currentPrice":150,"amount":10,"purchaseDate":"2024-01-15"}`
		if string(data) != want {
			t.Errorf("Expected %s, got %s", want, data)
		}
	})

	t.Run("reads legacy timestamp purchase dates", func(t *testing.T) {
		raw := `{"name":"MSFT","purchasePrice":1,"currentPrice":2,"amount":3,"purchaseDate":"2023-06-01T00:00:00.000Z","targetPrice":2}`

		var h Holding
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			t.Fatalf("Unmarshal returned error: %v", err)
		}
		if h.PurchaseDate != NewDate(2023, time.June, 1) {
			t.Errorf("Expected 2023-06-01, got %v", h.PurchaseDate)
		}
		if h.TargetPrice == nil || *h.TargetPrice != 2 {
			t.Errorf("Expected target price 2, got %v", h.TargetPrice)
		}
		if !h.AtTarget() {
			t.Error("Expected holding to be at target")
		}
	})
}
