package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
)

// DefaultBaseURL is the public Yahoo Finance chart API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying stock prices.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithHTTP(&http.Client{Timeout: 10 * time.Second})
}

// NewFinanceClientWithHTTP creates a Yahoo Finance client using httpClient.
func NewFinanceClientWithHTTP(httpClient *http.Client) *FinanceClient {
	return &FinanceClient{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
	}
}

// WithBaseURL points the client at another host, used by tests.
func (c *FinanceClient) WithBaseURL(baseURL string) *FinanceClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// FetchLatestPrice returns the most recent close of the symbol's five day chart.
// All failures wrap apperrors.ErrQuoteUnavailable.
func (c *FinanceClient) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	resp, err := c.QueryYahooFiveDaySymbol(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, symbol, err)
	}

	chart, err := c.ParseChart(resp)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", apperrors.ErrQuoteUnavailable, symbol, err)
	}

	return chart.Indicators[len(chart.Indicators)-1].PriceClose, nil
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// The method performs validation to ensure:
//   - Timestamp data is present
//   - Close price data is present
//   - Data arrays have matching lengths
//
// Bars whose close is null, NaN or infinite are skipped. At least one bar with a close is required.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, v := range result.Timestamp {
		if quote.Close[i] == nil || math.IsNaN(*quote.Close[i]) || math.IsInf(*quote.Close[i], 0) {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceClose: *quote.Close[i],
			PriceOpen:  valueAt(quote.Open, i),
			PriceHigh:  valueAt(quote.High, i),
			PriceLow:   valueAt(quote.Low, i),
			Volume:     valueAt(quote.Volume, i),
		})
	}
	if len(indicators) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	return PriceChart{
		Symbol:     result.Meta.Symbol,
		Currency:   result.Meta.Currency,
		LongName:   result.Meta.LongName,
		Indicators: indicators,
	}, nil
}

func valueAt[T float64 | int64](values []*T, i int) T {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// This method is optimized for retrieving recent price history, typically used
// to get the latest available closing price.
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))
	result, err := c.queryYahoo(ctx, u)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
// This method handles the common logic for making requests, reading responses,
// parsing JSON, and checking for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, fmt.Errorf("malformed response (http %d): %w", resp.StatusCode, err)
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s: %s", response.Chart.Error.Code, response.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("yahoo http %d", resp.StatusCode)
	}

	return response, nil
}
