package service_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/quote"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/repository"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []model.TargetReached
}

func (r *recordingNotifier) Notify(_ context.Context, alert model.TargetReached) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func TestRefreshService_Tick(t *testing.T) {
	t.Run("failed symbol keeps its price while others update and persist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewHoldingRepository(repository.NewStateRepository(db), zap.NewNop())
		portfolio := service.NewPortfolioService(repo, zap.NewNop(), time.UTC)
		portfolio.Initialize([]model.Holding{
			testutil.NewHolding().WithName("A").WithPrices(100, 150).WithAmount(10).Build(),
			testutil.NewHolding().WithName("B").WithPrices(200, 180).WithAmount(5).Build(),
		})

		provider := testutil.NewMockQuoteProvider().
			WithError("A", errors.New("timeout")).
			WithPrice("B", 99)
		refresh := service.NewRefreshService(portfolio, provider, &recordingNotifier{}, zap.NewNop(), time.Minute, 2)

		result := refresh.Tick(context.Background())

		got := portfolio.Holdings()
		if got[0].CurrentPrice != 150 {
			t.Errorf("Expected A to keep 150, got %v", got[0].CurrentPrice)
		}
		if got[1].CurrentPrice != 99 {
			t.Errorf("Expected B at 99, got %v", got[1].CurrentPrice)
		}
		if len(result.Failed) != 1 || result.Failed[0] != "A" {
			t.Errorf("Expected A to be reported as failed, got %v", result.Failed)
		}
		if result.Updated["B"] != 99 || len(result.Updated) != 1 {
			t.Errorf("Unexpected updates %v", result.Updated)
		}

		loaded, ok := repo.Load()
		if !ok || loaded[1].CurrentPrice != 99 || loaded[0].CurrentPrice != 150 {
			t.Errorf("Expected refreshed prices to be persisted, got %+v", loaded)
		}
	})

	t.Run("fetches each distinct name once", func(t *testing.T) {
		portfolio, _ := newPortfolio(t,
			testutil.NewHolding().WithName("A").Build(),
			testutil.NewHolding().WithName("A").Build(),
			testutil.NewHolding().WithName("B").Build(),
		)
		provider := testutil.NewMockQuoteProvider().WithPrice("A", 1).WithPrice("B", 2)
		refresh := service.NewRefreshService(portfolio, provider, &recordingNotifier{}, zap.NewNop(), 0, 0)

		refresh.Tick(context.Background())

		if provider.Calls("A") != 1 || provider.Calls("B") != 1 {
			t.Errorf("Expected one fetch per symbol, got A=%d B=%d", provider.Calls("A"), provider.Calls("B"))
		}
		for _, h := range portfolio.Holdings() {
			if h.Name == "A" && h.CurrentPrice != 1 {
				t.Errorf("Expected every A holding at 1, got %v", h.CurrentPrice)
			}
		}
	})

	t.Run("does not write when every fetch fails", func(t *testing.T) {
		portfolio, store := newPortfolio(t, testutil.NewHolding().WithName("A").Build())
		refresh := service.NewRefreshService(portfolio, testutil.NewMockQuoteProvider(), &recordingNotifier{}, zap.NewNop(), 0, 0)

		result := refresh.Tick(context.Background())

		if store.SaveCount() != 0 {
			t.Errorf("Expected no save, got %d", store.SaveCount())
		}
		if len(result.Failed) != 1 {
			t.Errorf("Expected 1 failure, got %v", result.Failed)
		}
	})

	t.Run("empty portfolio is a no-op", func(t *testing.T) {
		portfolio, _ := newPortfolio(t)
		provider := testutil.NewMockQuoteProvider()
		refresh := service.NewRefreshService(portfolio, provider, &recordingNotifier{}, zap.NewNop(), 0, 0)

		result := refresh.Tick(context.Background())

		if len(result.Updated) != 0 || len(result.Failed) != 0 || len(result.Alerts) != 0 {
			t.Errorf("Expected empty result, got %+v", result)
		}
	})
}

// TestRefreshService_TargetReached checks that a holding sitting on its target
// is reported on every tick, not only the first.
func TestRefreshService_TargetReached(t *testing.T) {
	portfolio, _ := newPortfolio(t,
		testutil.NewHolding().WithName("T").WithPrices(40, 45).WithTarget(50).Build(),
		testutil.NewHolding().WithName("N").WithPrices(40, 45).WithTarget(60).Build(),
		testutil.NewHolding().WithName("X").WithPrices(40, 45).Build(),
	)
	provider := testutil.NewMockQuoteProvider().WithPrice("T", 50).WithPrice("N", 59.99).WithPrice("X", 50)
	notifier := &recordingNotifier{}
	refresh := service.NewRefreshService(portfolio, provider, notifier, zap.NewNop(), 0, 0)

	first := refresh.Tick(context.Background())
	if len(first.Alerts) != 1 || first.Alerts[0].Name != "T" {
		t.Fatalf("Expected one alert for T, got %+v", first.Alerts)
	}
	if first.Alerts[0].TargetPrice != 50 || first.Alerts[0].CurrentPrice != 50 || first.Alerts[0].ID == "" {
		t.Errorf("Unexpected alert %+v", first.Alerts[0])
	}

	second := refresh.Tick(context.Background())
	if len(second.Alerts) != 1 {
		t.Errorf("Expected T to be reported again, got %+v", second.Alerts)
	}
	if second.Alerts[0].ID == first.Alerts[0].ID {
		t.Error("Expected a fresh alert ID per notification")
	}

	if notifier.count() != 2 {
		t.Errorf("Expected 2 notifications, got %d", notifier.count())
	}
}

func TestRefreshService_Schedule(t *testing.T) {
	portfolio, _ := newPortfolio(t, testutil.NewHolding().WithName("A").WithPrices(1, 1).Build())
	provider := testutil.NewMockQuoteProvider().WithPrice("A", 2)
	refresh := service.NewRefreshService(portfolio, provider, &recordingNotifier{}, zap.NewNop(), time.Second, 0)

	if err := refresh.Start(); err != nil {
		t.Fatalf("Start() returned unexpected error: %v", err)
	}
	if err := refresh.Start(); err == nil {
		t.Error("Expected second Start() to fail")
	}

	deadline := time.Now().Add(5 * time.Second)
	for provider.Calls("A") == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	refresh.Stop(ctx)

	if provider.Calls("A") == 0 {
		t.Fatal("Expected a scheduled tick within 5s")
	}
	if got := portfolio.Holdings()[0].CurrentPrice; got != 2 {
		t.Errorf("Expected scheduled tick to apply price 2, got %v", got)
	}

	calls := provider.Calls("A")
	time.Sleep(1500 * time.Millisecond)
	if provider.Calls("A") != calls {
		t.Error("Expected no ticks after Stop()")
	}

	// stopping twice is harmless
	refresh.Stop(ctx)
}

// TestRefreshService_NonFiniteQuote guards the store against NaN and infinite
// prices: they would make every later profit computation and save fail.
func TestRefreshService_NonFiniteQuote(t *testing.T) {
	t.Run("provider returning NaN or Inf counts as failed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewHoldingRepository(repository.NewStateRepository(db), zap.NewNop())
		portfolio := service.NewPortfolioService(repo, zap.NewNop(), time.UTC)
		portfolio.Initialize([]model.Holding{
			testutil.NewHolding().WithName("A").WithPrices(100, 150).WithAmount(10).Build(),
			testutil.NewHolding().WithName("B").WithPrices(200, 180).WithAmount(5).Build(),
			testutil.NewHolding().WithName("C").WithPrices(1, 1).WithAmount(1).Build(),
		})

		provider := testutil.NewMockQuoteProvider().
			WithPrice("A", math.NaN()).
			WithPrice("B", math.Inf(1)).
			WithPrice("C", 5)
		refresh := service.NewRefreshService(portfolio, provider, &recordingNotifier{}, zap.NewNop(), time.Minute, 0)

		result := refresh.Tick(context.Background())

		if len(result.Failed) != 2 || result.Failed[0] != "A" || result.Failed[1] != "B" {
			t.Errorf("Expected A and B to fail, got %v", result.Failed)
		}
		if _, ok := result.Updated["A"]; ok {
			t.Error("NaN must not be reported as an update")
		}

		view := portfolio.View()
		if view.TotalProfit != 404 {
			t.Errorf("Expected total 500-100+4 = 404, got %v", view.TotalProfit)
		}

		loaded, ok := repo.Load()
		if !ok || loaded[0].CurrentPrice != 150 || loaded[1].CurrentPrice != 180 || loaded[2].CurrentPrice != 5 {
			t.Errorf("Expected persisted prices 150/180/5, got %+v, %v", loaded, ok)
		}
	})

	t.Run("NaN close from Alpha Vantage leaves the portfolio readable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Time Series (5min)":{"2024-01-02 10:00:00":{"4. close":"NaN"}}}`)) //nolint:errcheck // test server
		}))
		t.Cleanup(srv.Close)

		portfolio, store := newPortfolio(t, testutil.NewHolding().WithName("A").WithPrices(100, 150).WithAmount(2).Build())
		provider := quote.NewAlphaVantageClient(srv.Client(), srv.URL, "demo", "5min")
		refresh := service.NewRefreshService(portfolio, provider, &recordingNotifier{}, zap.NewNop(), time.Minute, 0)

		result := refresh.Tick(context.Background())

		if len(result.Updated) != 0 || len(result.Failed) != 1 {
			t.Errorf("Expected A to fail, got %+v", result)
		}
		if got := portfolio.View().TotalProfit; got != 100 {
			t.Errorf("Expected unchanged profit 100, got %v", got)
		}
		if store.SaveCount() != 0 {
			t.Errorf("Expected no write, got %d saves", store.SaveCount())
		}
	})
}

func TestRefreshService_ConcurrentStartStop(t *testing.T) {
	portfolio, _ := newPortfolio(t)
	refresh := service.NewRefreshService(portfolio, testutil.NewMockQuoteProvider(), &recordingNotifier{}, zap.NewNop(), time.Hour, 0)

	var (
		wg      sync.WaitGroup
		started atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if refresh.Start() == nil {
				started.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := started.Load(); got != 1 {
		t.Fatalf("Expected exactly one Start() to succeed, got %d", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refresh.Stop(ctx)
		}()
	}
	wg.Wait()

	if err := refresh.Start(); err != nil {
		t.Errorf("Expected Start() after Stop() to succeed, got %v", err)
	}
	refresh.Stop(ctx)
}
