package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/export"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/testutil"
)

type portfolioFixture struct {
	handler   *PortfolioHandler
	portfolio *service.PortfolioService
	store     *testutil.MemoryStore
	provider  *testutil.MockQuoteProvider
	exportDir string
}

func setupPortfolioHandler(t *testing.T, holdings ...model.Holding) portfolioFixture {
	t.Helper()

	store := testutil.NewMemoryStoreWith(holdings...)
	portfolio := service.NewPortfolioService(store, zap.NewNop(), time.UTC)
	portfolio.Initialize(nil)

	provider := testutil.NewMockQuoteProvider()
	refresh := service.NewRefreshService(portfolio, provider, nopNotifier{}, zap.NewNop(), 0, 0)

	exportDir := filepath.Join(t.TempDir(), "exports")
	exporter := service.NewExportService(portfolio, export.NewPDFRenderer(""), exportDir, zap.NewNop())

	return portfolioFixture{
		handler:   NewPortfolioHandler(portfolio, refresh, exporter),
		portfolio: portfolio,
		store:     store,
		provider:  provider,
		exportDir: exportDir,
	}
}

func TestPortfolioHandler_Portfolio(t *testing.T) {
	t.Run("GET /api/portfolio returns empty view", func(t *testing.T) {
		f := setupPortfolioHandler(t)

		w := httptest.NewRecorder()
		f.handler.Portfolio(w, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var view model.PortfolioView
		if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(view.Rows) != 0 || view.TotalProfit != 0 || len(view.MonthlySeries) != 0 {
			t.Errorf("Expected empty view, got %+v", view)
		}
	})

	t.Run("GET /api/portfolio returns rows with profit and total", func(t *testing.T) {
		f := setupPortfolioHandler(t,
			testutil.NewHolding().WithName("A").WithPrices(100, 150).WithAmount(10).Build(),
			testutil.NewHolding().WithName("B").WithPrices(200, 180).WithAmount(5).Build(),
		)

		w := httptest.NewRecorder()
		f.handler.Portfolio(w, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))

		var view model.PortfolioView
		if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(view.Rows) != 2 || view.Rows[0].Name != "A" || view.Rows[0].Profit != 500 {
			t.Errorf("Unexpected rows %+v", view.Rows)
		}
		if view.TotalProfit != 400 {
			t.Errorf("Expected total 400, got %v", view.TotalProfit)
		}
	})
}

func TestPortfolioHandler_Monthly(t *testing.T) {
	f := setupPortfolioHandler(t,
		testutil.NewHolding().WithPrices(1, 2).WithDate(2024, time.February, 3).Build(),
		testutil.NewHolding().WithPrices(1, 3).WithDate(2023, time.November, 30).Build(),
	)

	w := httptest.NewRecorder()
	f.handler.Monthly(w, httptest.NewRequest(http.MethodGet, "/api/portfolio/monthly", nil))

	var points []model.MonthlyProfitPoint
	if err := json.NewDecoder(w.Body).Decode(&points); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(points) != 2 || points[0].Month != "2023-11" || points[1].Month != "2024-02" {
		t.Errorf("Unexpected points %+v", points)
	}
}

func TestPortfolioHandler_AddHolding(t *testing.T) {
	t.Run("creates holding and returns 201", func(t *testing.T) {
		f := setupPortfolioHandler(t)
		body := `{"name":"AAPL","purchasePrice":100,"currentPrice":120,"amount":2,"purchaseDate":"2024-04-01","targetPrice":130}`

		w := httptest.NewRecorder()
		f.handler.AddHolding(w, testutil.NewJSONRequest(http.MethodPost, "/api/portfolio/holding", body))

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var h model.Holding
		if err := json.NewDecoder(w.Body).Decode(&h); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if h.Name != "AAPL" || h.PurchaseDate != model.NewDate(2024, time.April, 1) || h.TargetPrice == nil {
			t.Errorf("Unexpected holding %+v", h)
		}
		if saved := f.store.Saved(); len(saved) != 1 {
			t.Errorf("Expected holding to be persisted, got %d", len(saved))
		}
	})

	t.Run("missing date defaults to today", func(t *testing.T) {
		f := setupPortfolioHandler(t)

		w := httptest.NewRecorder()
		f.handler.AddHolding(w, testutil.NewJSONRequest(http.MethodPost, "/api/portfolio/holding",
			`{"name":"AAPL","purchasePrice":1,"currentPrice":1,"amount":1}`))

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if got := f.portfolio.Holdings()[0].PurchaseDate; got != model.Today(time.UTC) {
			t.Errorf("Expected today, got %v", got)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"name":`},
		{name: "unknown field", body: `{"name":"A","ticker":"A"}`},
		{name: "missing name", body: `{"purchasePrice":1}`},
		{name: "invalid date", body: `{"name":"A","purchaseDate":"01/02/2024"}`},
		{name: "wrong type", body: `{"name":"A","amount":"ten"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 for "+tt.name, func(t *testing.T) {
			f := setupPortfolioHandler(t)

			w := httptest.NewRecorder()
			f.handler.AddHolding(w, testutil.NewJSONRequest(http.MethodPost, "/api/portfolio/holding", tt.body))

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var resp response.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("Expected an error body, got %v", err)
			}
			if len(f.portfolio.Holdings()) != 0 {
				t.Error("Rejected request must not change the portfolio")
			}
		})
	}
}

func TestPortfolioHandler_Refresh(t *testing.T) {
	t.Run("runs one tick and reports the result", func(t *testing.T) {
		f := setupPortfolioHandler(t,
			testutil.NewHolding().WithName("A").WithPrices(100, 150).Build(),
			testutil.NewHolding().WithName("B").WithPrices(200, 180).Build(),
		)
		f.provider.WithError("A", errors.New("down")).WithPrice("B", 99)

		w := httptest.NewRecorder()
		f.handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/portfolio/refresh", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.RefreshResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.Updated["B"] != 99 || len(result.Failed) != 1 || result.Failed[0] != "A" {
			t.Errorf("Unexpected result %+v", result)
		}
	})

	t.Run("returns 503 without a quote provider", func(t *testing.T) {
		f := setupPortfolioHandler(t)
		handler := NewPortfolioHandler(f.portfolio, nil, nil)

		w := httptest.NewRecorder()
		handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/portfolio/refresh", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_Export(t *testing.T) {
	t.Run("writes the pdf and returns its path", func(t *testing.T) {
		f := setupPortfolioHandler(t, testutil.NewHolding().Build())

		w := httptest.NewRecorder()
		f.handler.Export(w, httptest.NewRequest(http.MethodPost, "/api/portfolio/export", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp ExportResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if filepath.Dir(resp.Path) != f.exportDir {
			t.Errorf("Expected file in %s, got %s", f.exportDir, resp.Path)
		}
		if _, err := os.Stat(resp.Path); err != nil {
			t.Errorf("Expected exported file to exist: %v", err)
		}
	})

	t.Run("returns 500 when the export fails", func(t *testing.T) {
		f := setupPortfolioHandler(t)
		if err := os.WriteFile(f.exportDir, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}

		w := httptest.NewRecorder()
		f.handler.Export(w, httptest.NewRequest(http.MethodPost, "/api/portfolio/export", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
	})
}
