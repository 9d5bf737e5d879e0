package fetch

import (
	"context"
	"time"

	"github.com/halver/copysig/shared"
)

// Provider defines the requirements for a price data provider.
type Provider interface {
	// Name returns the name of the provider.
	Name() string
	// FetchPrice fetches the current quote for the provided pair.
	FetchPrice(ctx context.Context, pair string) (*shared.PriceQuote, error)
	// FetchHistorical fetches the most recent bars for the provided pair.
	FetchHistorical(ctx context.Context, pair string, timeframe shared.Timeframe, count int) ([]shared.PriceBar, error)
}

// RangeProvider defines the requirements for a provider serving arbitrary
// historical windows.
type RangeProvider interface {
	Provider
	// FetchHistoricalRange fetches bars for the provided pair and window.
	FetchHistoricalRange(ctx context.Context, pair string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]shared.PriceBar, error)
}

// ProviderStatus describes the health of a registered provider.
type ProviderStatus struct {
	// Name is the name of the provider.
	Name string
	// Healthy indicates whether the last fetch from the provider succeeded.
	Healthy bool
	// LastUsed is the time of the last fetch attempt against the provider.
	LastUsed time.Time
}
