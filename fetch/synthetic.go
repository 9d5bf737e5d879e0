package fetch

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/halver/copysig/shared"
)

const syntheticName = "synthetic"

// pairProfile describes the price behavior of a synthesized pair.
type pairProfile struct {
	base       float64
	volatility float64
}

// syntheticProfiles holds the price profiles of supported pairs.
var syntheticProfiles = map[string]pairProfile{
	"EURUSD": {base: 1.085, volatility: 0.002},
	"GBPUSD": {base: 1.265, volatility: 0.0025},
	"USDJPY": {base: 149.5, volatility: 0.003},
	"GBPJPY": {base: 189.25, volatility: 0.0035},
	"XAUUSD": {base: 2025.5, volatility: 0.005},
	"BTCUSD": {base: 43250, volatility: 0.012},
}

// defaultProfile is the profile used for pairs without a dedicated one.
var defaultProfile = pairProfile{base: 100, volatility: 0.002}

// Synthetic generates deterministic price data without any upstream
// dependency. The same pair and bar time always produce the same bar, so
// overlapping windows agree.
type Synthetic struct{}

// Ensure Synthetic implements the Provider and RangeProvider interfaces.
var _ Provider = (*Synthetic)(nil)
var _ RangeProvider = (*Synthetic)(nil)

// NewSynthetic initializes a new synthetic provider.
func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

// Name returns the name of the provider.
func (s *Synthetic) Name() string {
	return syntheticName
}

// profile fetches the price profile for the provided pair.
func profile(pair string) pairProfile {
	p, ok := syntheticProfiles[pair]
	if !ok {
		return defaultProfile
	}

	return p
}

// barSeed derives a stable seed from the provided pair and bar time.
func barSeed(pair string, at time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(pair))

	return int64(h.Sum64()) ^ at.Unix()
}

// closeAt synthesizes the closing price of the provided pair at the given
// bar time, a slow sine trend with seeded noise on top of the pair base.
func closeAt(pair string, at time.Time) float64 {
	p := profile(pair)

	const trendCycle = time.Hour * 24 * 30
	phase := float64(at.Unix()%int64(trendCycle.Seconds())) / trendCycle.Seconds()
	trend := p.base * 0.02 * math.Sin(2*math.Pi*phase)

	rng := rand.New(rand.NewSource(barSeed(pair, at)))
	noise := (rng.Float64()*2 - 1) * p.volatility * p.base

	return p.base + trend + noise
}

// barAt synthesizes the full price bar of the provided pair at the given
// bar time.
func barAt(pair string, timeframe shared.Timeframe, at time.Time) shared.PriceBar {
	p := profile(pair)
	rng := rand.New(rand.NewSource(barSeed(pair, at) + 1))

	open := closeAt(pair, at.Add(-timeframe.Duration()))
	closePrice := closeAt(pair, at)

	wick := p.volatility * p.base * 0.5

	return shared.PriceBar{
		Open:      open,
		High:      math.Max(open, closePrice) + rng.Float64()*wick,
		Low:       math.Min(open, closePrice) - rng.Float64()*wick,
		Close:     closePrice,
		Volume:    1000 + rng.Float64()*9000,
		Date:      at,
		Pair:      pair,
		Timeframe: timeframe,
	}
}

// FetchPrice fetches the current quote for the provided pair.
func (s *Synthetic) FetchPrice(ctx context.Context, pair string) (*shared.PriceQuote, error) {
	now := time.Now().UTC().Truncate(time.Hour)

	price := closeAt(pair, now)
	dayAgo := closeAt(pair, now.Add(-time.Hour*24))
	change := price - dayAgo

	return &shared.PriceQuote{
		Pair:          pair,
		Price:         price,
		Change:        change,
		ChangePercent: (change / dayAgo) * 100,
		Volume:        barAt(pair, shared.OneHour, now).Volume,
		Timestamp:     now,
	}, nil
}

// FetchHistorical fetches the most recent bars for the provided pair.
func (s *Synthetic) FetchHistorical(ctx context.Context, pair string, timeframe shared.Timeframe, count int) ([]shared.PriceBar, error) {
	end := time.Now().UTC().Truncate(timeframe.Duration())
	start := end.Add(-timeframe.Duration() * time.Duration(count-1))

	return s.FetchHistoricalRange(ctx, pair, timeframe, start, end)
}

// FetchHistoricalRange fetches bars for the provided pair and window.
func (s *Synthetic) FetchHistoricalRange(ctx context.Context, pair string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]shared.PriceBar, error) {
	step := timeframe.Duration()
	first := start.UTC().Truncate(step)

	var bars []shared.PriceBar
	for at := first; !at.After(end); at = at.Add(step) {
		bars = append(bars, barAt(pair, timeframe, at))
	}

	return bars, nil
}
