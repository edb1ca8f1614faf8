package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/yahoo"
)

// CreateMockYahooResponse creates a Yahoo chart response with one daily bar per close,
// ending yesterday. A nil close is emitted as JSON null, like Yahoo does for bars without trades.
func CreateMockYahooResponse(symbol string, closes ...*float64) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	days := len(closes)
	timestamps := make([]int64, days)
	volumes := make([]*int64, days)
	for i := range closes {
		timestamps[i] = yesterday.AddDate(0, 0, -days+i+1).Unix()
		volume := int64(1000000 + i*10000)
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:           symbol,
						Currency:         "USD",
						ExchangeName:     "NMS",
						FullExchangeName: "NASDAQ",
						LongName:         symbol + " Inc.",
						Shortname:        symbol,
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   closes,
								High:   closes,
								Low:    closes,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}

// CreateMockYahooErrorResponse creates a Yahoo response carrying a chart error,
// as returned for unknown symbols.
func CreateMockYahooErrorResponse(code, description string) yahoo.Response {
	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{},
			Error:  &yahoo.ChartError{Code: code, Description: description},
		},
	}
}

// Price returns a pointer to v for building close series.
func Price(v float64) *float64 {
	return &v
}

// MockYahooServer serves canned chart responses per symbol under /v8/finance/chart/{symbol}.
// Unknown symbols get a 404 chart error.
type MockYahooServer struct {
	*httptest.Server

	mu         sync.Mutex
	responses  map[string]yahoo.Response
	queryCount int
}

// NewMockYahooServer starts a server that is closed when the test ends.
func NewMockYahooServer(t *testing.T) *MockYahooServer {
	t.Helper()

	m := &MockYahooServer{responses: make(map[string]yahoo.Response)}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)
	return m
}

// WithResponse configures the response returned for symbol.
func (m *MockYahooServer) WithResponse(symbol string, resp yahoo.Response) *MockYahooServer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[symbol] = resp
	return m
}

// QueryCount returns how many chart requests were served.
func (m *MockYahooServer) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCount
}

func (m *MockYahooServer) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.queryCount++
	symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
	resp, ok := m.responses[symbol]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		resp = CreateMockYahooErrorResponse("Not Found", "No data found, symbol may be delisted")
	}
	json.NewEncoder(w).Encode(resp) //nolint:errcheck // test server
}
