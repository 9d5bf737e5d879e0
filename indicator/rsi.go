package indicator

const (
	// DefaultRSIPeriod is the default lookback period for the RSI.
	DefaultRSIPeriod = 14
	// neutralRSI is the insufficient data default for the RSI.
	neutralRSI = float64(50)
)

// RSI computes the Wilder smoothed Relative Strength Index over the provided
// period. Fewer than period+1 prices yields the neutral default of 50, and a
// series with no observed losses yields 100.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return neutralRSI
	}

	// Simple average gain and loss over the first period changes.
	var avgGain, avgLoss float64
	for idx := 1; idx <= period; idx++ {
		change := prices[idx] - prices[idx-1]
		switch {
		case change > 0:
			avgGain += change
		default:
			avgLoss -= change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing for the remaining changes.
	for idx := period + 1; idx < len(prices); idx++ {
		change := prices[idx] - prices[idx-1]

		var gain, loss float64
		switch {
		case change > 0:
			gain = change
		default:
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
