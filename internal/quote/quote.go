// Package quote fetches latest prices from external quote providers.
//
// Every provider failure wraps apperrors.ErrQuoteUnavailable. Callers treat such
// a failure as "keep the existing price" for that one symbol.
package quote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/yahoo"
)

// Provider returns the latest known price for a symbol.
type Provider interface {
	FetchLatestPrice(ctx context.Context, symbol string) (float64, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, symbol string) (float64, error)

// FetchLatestPrice calls f.
func (f ProviderFunc) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	return f(ctx, symbol)
}

// NewProvider builds the provider selected in cfg.
func NewProvider(cfg config.QuoteConfig) (Provider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case "alphavantage", "":
		if cfg.APIKey == "" {
			return nil, apperrors.ErrAPIKeyMissing
		}
		return NewAlphaVantageClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Interval), nil
	case "yahoo":
		client := yahoo.NewFinanceClientWithHTTP(httpClient)
		if cfg.BaseURL != "" {
			client.WithBaseURL(cfg.BaseURL)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q", cfg.Provider)
	}
}
