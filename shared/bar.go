package shared

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// DateLayout is the format layout for parsing bar dates.
	DateLayout = "2006-01-02 15:04:05"
)

// Timeframe represents the market data time period.
type Timeframe int

const (
	OneHour Timeframe = iota
	OneDay
)

// String stringifies the provided timeframe.
func (t *Timeframe) String() string {
	switch *t {
	case OneHour:
		return "1h"
	case OneDay:
		return "1d"
	default:
		return "unknown"
	}
}

// Duration returns the bar interval of the provided timeframe.
func (t *Timeframe) Duration() time.Duration {
	switch *t {
	case OneDay:
		return time.Hour * 24
	default:
		return time.Hour
	}
}

// ParseTimeframe parses a timeframe from its string form.
func ParseTimeframe(str string) (Timeframe, error) {
	switch str {
	case "1h":
		return OneHour, nil
	case "1d":
		return OneDay, nil
	default:
		return 0, fmt.Errorf("unknown timeframe: %s", str)
	}
}

// PriceBar represents a unit of market data for a pair.
type PriceBar struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	Date   time.Time

	// Metadata fields.
	Pair      string
	Timeframe Timeframe
}

// Validate asserts the bar satisfies the price range invariant.
func (b *PriceBar) Validate() error {
	bodyLow := math.Min(b.Open, b.Close)
	bodyHigh := math.Max(b.Open, b.Close)

	switch {
	case b.Low > bodyLow:
		return fmt.Errorf("bar low %f greater than body low %f", b.Low, bodyLow)
	case b.High < bodyHigh:
		return fmt.Errorf("bar high %f less than body high %f", b.High, bodyHigh)
	default:
		return nil
	}
}

// Closes collects the close prices of the provided bars.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for idx := range bars {
		closes[idx] = bars[idx].Close
	}

	return closes
}

// RoundPrice rounds the provided value at the presentation boundary for
// the given pair, 5 decimal places or 3 for JPY quoted pairs.
func RoundPrice(pair string, value float64) float64 {
	factor := float64(100000)
	if strings.Contains(pair, "JPY") {
		factor = 1000
	}

	return math.Round(value*factor) / factor
}
