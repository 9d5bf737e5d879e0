package analysis

import (
	"github.com/halver/copysig/indicator"
	"github.com/halver/copysig/shared"
)

const (
	// baseConfidence is the starting confidence before any rule votes.
	baseConfidence = float64(50)
	// minConfidence is the minimum confidence required to emit a signal.
	minConfidence = float64(65)
	// maxConfidence is the ceiling applied to a signal's confidence.
	maxConfidence = float64(95)

	// rsiOversold and rsiOverbought are the RSI extremes voted on.
	rsiOversold   = float64(30)
	rsiOverbought = float64(70)
)

// voteContext carries the market evidence evaluated by vote rules.
type voteContext struct {
	pair       string
	price      float64
	indicators *indicator.Snapshot
	volume     float64
}

// vote represents a single rule's contribution to a signal.
type vote struct {
	direction    shared.Direction
	hasDirection bool
	weight       float64
	note         string
}

// voteRule evaluates market evidence and reports whether it fired.
type voteRule struct {
	name     string
	evaluate func(ctx *voteContext) (vote, bool)
}

// rsiRule votes contrarian on RSI extremes.
func rsiRule(ctx *voteContext) (vote, bool) {
	switch {
	case ctx.indicators.RSI < rsiOversold:
		return vote{direction: shared.Buy, hasDirection: true, weight: 15, note: "RSI oversold"}, true
	case ctx.indicators.RSI > rsiOverbought:
		return vote{direction: shared.Sell, hasDirection: true, weight: 15, note: "RSI overbought"}, true
	default:
		return vote{}, false
	}
}

// macdRule votes with a confirmed MACD crossover.
func macdRule(ctx *voteContext) (vote, bool) {
	macd := ctx.indicators.MACD
	switch {
	case macd.Value > macd.Signal && macd.Histogram > 0:
		return vote{direction: shared.Buy, hasDirection: true, weight: 12, note: "MACD bullish crossover"}, true
	case macd.Value < macd.Signal && macd.Histogram < 0:
		return vote{direction: shared.Sell, hasDirection: true, weight: 12, note: "MACD bearish crossover"}, true
	default:
		return vote{}, false
	}
}

// movingAverageRule votes with a stacked price and moving average trend.
func movingAverageRule(ctx *voteContext) (vote, bool) {
	switch {
	case ctx.price > ctx.indicators.EMA20 && ctx.indicators.EMA20 > ctx.indicators.SMA50:
		return vote{direction: shared.Buy, hasDirection: true, weight: 10, note: "Price above key MAs"}, true
	case ctx.price < ctx.indicators.EMA20 && ctx.indicators.EMA20 < ctx.indicators.SMA50:
		return vote{direction: shared.Sell, hasDirection: true, weight: 10, note: "Price below key MAs"}, true
	default:
		return vote{}, false
	}
}

// bollingerRule votes contrarian at the band edges.
func bollingerRule(ctx *voteContext) (vote, bool) {
	bands := ctx.indicators.Bollinger
	switch {
	case ctx.price <= bands.Lower:
		return vote{direction: shared.Buy, hasDirection: true, weight: 8, note: "Price at lower Bollinger Band"}, true
	case ctx.price >= bands.Upper:
		return vote{direction: shared.Sell, hasDirection: true, weight: 8, note: "Price at upper Bollinger Band"}, true
	default:
		return vote{}, false
	}
}

// volumeRule adds confidence without a directional vote when volume backs
// the move.
func volumeRule(ctx *voteContext) (vote, bool) {
	if ctx.volume > 0 {
		return vote{weight: 5, note: "Volume supporting move"}, true
	}

	return vote{}, false
}

// defaultRules is the ordered rule set folded over by the analyzer. Order is
// part of the contract: the first directional vote wins and later opposing
// votes contribute nothing.
var defaultRules = []voteRule{
	{name: "rsi", evaluate: rsiRule},
	{name: "macd", evaluate: macdRule},
	{name: "moving averages", evaluate: movingAverageRule},
	{name: "bollinger", evaluate: bollingerRule},
	{name: "volume", evaluate: volumeRule},
}
