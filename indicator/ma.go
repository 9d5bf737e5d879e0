package indicator

// Short series policy: moving averages degrade to the last observed price
// when fewer prices than the requested period are available, and to zero on
// an empty series. The same policy applies to both average families.

// SMA computes the arithmetic mean of the last period prices.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 || period <= 0 {
		return 0
	}

	if len(prices) < period {
		return prices[len(prices)-1]
	}

	var sum float64
	for idx := len(prices) - period; idx < len(prices); idx++ {
		sum += prices[idx]
	}

	return sum / float64(period)
}

// EMA computes the exponential moving average of the provided prices, seeded
// with the first price and smoothed over the whole series.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 || period <= 0 {
		return 0
	}

	if len(prices) < period {
		return prices[len(prices)-1]
	}

	multiplier := 2 / float64(period+1)
	ema := prices[0]
	for idx := 1; idx < len(prices); idx++ {
		ema = prices[idx]*multiplier + ema*(1-multiplier)
	}

	return ema
}
