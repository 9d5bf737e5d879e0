package shared

import (
	"context"
)

// PriceProvider defines the requirements for supplying market data to the
// analysis and backtesting engines.
type PriceProvider interface {
	// CurrentPrice fetches the current quote for the provided pair.
	CurrentPrice(ctx context.Context, pair string) (*PriceQuote, error)
	// HistoricalBars fetches up to count historical bars for the provided
	// pair and timeframe, in ascending time order.
	HistoricalBars(ctx context.Context, pair string, timeframe Timeframe, count int) ([]PriceBar, error)
}
