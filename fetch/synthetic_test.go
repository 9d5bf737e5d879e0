package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/halver/copysig/shared"
	"github.com/peterldowns/testy/assert"
)

func TestSyntheticDeterminism(t *testing.T) {
	synthetic := NewSynthetic()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour * 48)

	// The same window always produces identical bars.
	first, err := synthetic.FetchHistoricalRange(context.Background(), "EURUSD", shared.OneHour, start, end)
	assert.NoError(t, err)

	second, err := synthetic.FetchHistoricalRange(context.Background(), "EURUSD", shared.OneHour, start, end)
	assert.NoError(t, err)
	assert.Equal(t, cmp.Diff(first, second), "")

	// Overlapping windows agree on shared bars.
	shifted, err := synthetic.FetchHistoricalRange(context.Background(), "EURUSD", shared.OneHour,
		start.Add(time.Hour*24), end)
	assert.NoError(t, err)
	assert.Equal(t, cmp.Diff(first[24:], shifted), "")

	// Different pairs diverge.
	other, err := synthetic.FetchHistoricalRange(context.Background(), "GBPUSD", shared.OneHour, start, end)
	assert.NoError(t, err)
	assert.True(t, first[0].Close != other[0].Close)
}

func TestSyntheticBars(t *testing.T) {
	synthetic := NewSynthetic()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour * 99)

	bars, err := synthetic.FetchHistoricalRange(context.Background(), "USDJPY", shared.OneHour, start, end)
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 100)

	base := syntheticProfiles["USDJPY"].base

	for idx := range bars {
		// Bars are well formed and hug the pair base.
		assert.NoError(t, bars[idx].Validate())
		assert.True(t, bars[idx].Close > base*0.9)
		assert.True(t, bars[idx].Close < base*1.1)
		assert.True(t, bars[idx].Volume >= 1000)

		// Bars chain, each opens at the previous close.
		if idx > 0 {
			assert.Equal(t, bars[idx].Open, bars[idx-1].Close)
			assert.True(t, bars[idx].Date.After(bars[idx-1].Date))
		}
	}
}

func TestSyntheticUnknownPair(t *testing.T) {
	synthetic := NewSynthetic()

	// Unknown pairs fall back to the default profile.
	quote, err := synthetic.FetchPrice(context.Background(), "ABCXYZ")
	assert.NoError(t, err)
	assert.True(t, quote.Price > defaultProfile.base*0.9)
	assert.True(t, quote.Price < defaultProfile.base*1.1)
}

func TestSyntheticFetchHistorical(t *testing.T) {
	synthetic := NewSynthetic()

	bars, err := synthetic.FetchHistorical(context.Background(), "EURUSD", shared.OneHour, 50)
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 50)
	assert.Equal(t, bars[len(bars)-1].Timeframe, shared.OneHour)
}
