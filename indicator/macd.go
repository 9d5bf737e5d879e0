package indicator

const (
	// macdFastPeriod is the fast EMA period of the MACD.
	macdFastPeriod = 12
	// macdSlowPeriod is the slow EMA period of the MACD.
	macdSlowPeriod = 26
	// macdSignalPeriod is the smoothing period of the MACD signal line.
	macdSignalPeriod = 9
)

// MACD represents the Moving Average Convergence Divergence values at the
// end of a price series.
type MACD struct {
	Value     float64
	Signal    float64
	Histogram float64
}

// macdSeries computes the rolling MACD series for the provided prices using
// running fast and slow EMAs updated per step.
func macdSeries(prices []float64) []float64 {
	if len(prices) == 0 {
		return nil
	}

	fastMultiplier := 2 / float64(macdFastPeriod+1)
	slowMultiplier := 2 / float64(macdSlowPeriod+1)

	fast := prices[0]
	slow := prices[0]

	series := make([]float64, len(prices))
	for idx := 1; idx < len(prices); idx++ {
		fast = prices[idx]*fastMultiplier + fast*(1-fastMultiplier)
		slow = prices[idx]*slowMultiplier + slow*(1-slowMultiplier)
		series[idx] = fast - slow
	}

	return series
}

// ComputeMACD computes the MACD of the provided prices. The signal line is a
// 9 period EMA over the retained rolling MACD series, not over price.
func ComputeMACD(prices []float64) MACD {
	series := macdSeries(prices)
	if len(series) == 0 {
		return MACD{}
	}

	value := series[len(series)-1]
	signal := EMA(series, macdSignalPeriod)

	return MACD{
		Value:     value,
		Signal:    signal,
		Histogram: value - signal,
	}
}
