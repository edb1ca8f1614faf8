package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
)

// DefaultAlphaVantageURL is the public Alpha Vantage API host.
const DefaultAlphaVantageURL = "https://www.alphavantage.co"

// AlphaVantageClient reads the latest intraday close from the Alpha Vantage
// TIME_SERIES_INTRADAY endpoint.
type AlphaVantageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	interval   string
}

// NewAlphaVantageClient creates a client for baseURL; empty means DefaultAlphaVantageURL.
// interval is the intraday bar size, e.g. "5min".
func NewAlphaVantageClient(httpClient *http.Client, baseURL, apiKey, interval string) *AlphaVantageClient {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if interval == "" {
		interval = "5min"
	}
	return &AlphaVantageClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		interval:   interval,
	}
}

// intradayBar is one entry of an intraday time series. Alpha Vantage encodes all numbers as strings.
type intradayBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// FetchLatestPrice returns the close of the most recent bar of the symbol's intraday series.
func (c *AlphaVantageClient) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return 0, fmt.Errorf("%w: empty symbol", apperrors.ErrQuoteUnavailable)
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_INTRADAY")
	q.Set("symbol", symbol)
	q.Set("interval", c.interval)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrQuoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stock-portfolio-tracker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s: alphavantage http %d", apperrors.ErrQuoteUnavailable, symbol, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, symbol, err)
	}

	price, err := parseIntraday(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, symbol, err)
	}
	return price, nil
}

// parseIntraday extracts the latest close from an intraday response body.
// Timestamps are formatted "2006-01-02 15:04:05", so the greatest key is the most recent bar.
func parseIntraday(data []byte) (float64, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("malformed response: %w", err)
	}

	if msg, ok := raw["Error Message"]; ok {
		return 0, fmt.Errorf("alphavantage error: %s", unquote(msg))
	}
	for _, k := range []string{"Note", "Information"} {
		if msg, ok := raw[k]; ok {
			return 0, fmt.Errorf("%w: %s", apperrors.ErrQuoteRateLimited, unquote(msg))
		}
	}

	var series map[string]intradayBar
	for key, value := range raw {
		if !strings.HasPrefix(key, "Time Series") {
			continue
		}
		if err := json.Unmarshal(value, &series); err != nil {
			return 0, fmt.Errorf("malformed time series: %w", err)
		}
		break
	}
	if len(series) == 0 {
		return 0, fmt.Errorf("no time series in response")
	}

	var latest string
	for ts := range series {
		if ts > latest {
			latest = ts
		}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(series[latest].Close), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid close %q at %s: %w", series[latest].Close, latest, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("non-finite close %q at %s", series[latest].Close, latest)
	}
	return price, nil
}

func unquote(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return string(msg)
	}
	return s
}
