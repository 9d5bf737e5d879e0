package indicator

// Snapshot represents the indicator values computed from a price series
// ending at its last element. A snapshot is immutable once computed and is
// recomputed fresh for each bar.
type Snapshot struct {
	RSI       float64
	MACD      MACD
	EMA20     float64
	SMA20     float64
	SMA50     float64
	Bollinger Bands
}

// NewSnapshot computes a snapshot of all indicators over the provided prices.
func NewSnapshot(prices []float64) *Snapshot {
	return &Snapshot{
		RSI:       RSI(prices, DefaultRSIPeriod),
		MACD:      ComputeMACD(prices),
		EMA20:     EMA(prices, 20),
		SMA20:     SMA(prices, 20),
		SMA50:     SMA(prices, 50),
		Bollinger: BollingerBands(prices, DefaultBollingerPeriod, DefaultBollingerStdDev),
	}
}
