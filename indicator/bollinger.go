package indicator

import (
	"math"
)

const (
	// DefaultBollingerPeriod is the default lookback period for the bands.
	DefaultBollingerPeriod = 20
	// DefaultBollingerStdDev is the default deviation multiplier for the bands.
	DefaultBollingerStdDev = float64(2)
)

// Bands represents a Bollinger Band volatility envelope.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bandwidth returns the width of the envelope.
func (b *Bands) Bandwidth() float64 {
	return b.Upper - b.Lower
}

// BollingerBands computes the Bollinger Bands of the provided prices. With
// fewer prices than the period the bands collapse onto the middle.
func BollingerBands(prices []float64, period int, stdDevMultiplier float64) Bands {
	middle := SMA(prices, period)

	if len(prices) < period || period <= 0 {
		return Bands{Upper: middle, Middle: middle, Lower: middle}
	}

	var variance float64
	for idx := len(prices) - period; idx < len(prices); idx++ {
		diff := prices[idx] - middle
		variance += diff * diff
	}
	variance /= float64(period)

	stdDev := math.Sqrt(variance)

	return Bands{
		Upper:  middle + stdDev*stdDevMultiplier,
		Middle: middle,
		Lower:  middle - stdDev*stdDevMultiplier,
	}
}
