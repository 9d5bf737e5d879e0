package backtest

import (
	"fmt"

	"github.com/halver/copysig/shared"
)

const (
	// StrategyRSIMeanReversion buys oversold and sells overbought RSI.
	StrategyRSIMeanReversion = "rsi_mean_reversion"
	// StrategyMovingAverageCrossover trades stacked moving averages.
	StrategyMovingAverageCrossover = "moving_average_crossover"
	// StrategyTrendFollowing follows momentum confirmed by the RSI.
	StrategyTrendFollowing = "trend_following"
)

// strategyIndicators carries the indicator values an entry rule votes on.
type strategyIndicators struct {
	rsi   float64
	sma20 float64
	sma50 float64
	close float64
}

// entryRule decides whether to open a position given indicator evidence.
type entryRule func(ind strategyIndicators) (shared.Direction, bool)

// rsiMeanReversionRule enters against RSI extremes.
func rsiMeanReversionRule(ind strategyIndicators) (shared.Direction, bool) {
	switch {
	case ind.rsi < 30:
		return shared.Buy, true
	case ind.rsi > 70:
		return shared.Sell, true
	default:
		return 0, false
	}
}

// movingAverageCrossoverRule enters with a stacked moving average trend.
func movingAverageCrossoverRule(ind strategyIndicators) (shared.Direction, bool) {
	switch {
	case ind.close > ind.sma20 && ind.sma20 > ind.sma50:
		return shared.Buy, true
	case ind.close < ind.sma20 && ind.sma20 < ind.sma50:
		return shared.Sell, true
	default:
		return 0, false
	}
}

// trendFollowingRule enters with momentum confirmed by the RSI midline.
func trendFollowingRule(ind strategyIndicators) (shared.Direction, bool) {
	switch {
	case ind.rsi > 50 && ind.close > ind.sma20:
		return shared.Buy, true
	case ind.rsi < 50 && ind.close < ind.sma20:
		return shared.Sell, true
	default:
		return 0, false
	}
}

// ruleForStrategy resolves the entry rule registered for the provided
// strategy id. Unknown ids are fatal, there is no fallback strategy.
func ruleForStrategy(strategyID string) (entryRule, error) {
	switch strategyID {
	case StrategyRSIMeanReversion:
		return rsiMeanReversionRule, nil
	case StrategyMovingAverageCrossover:
		return movingAverageCrossoverRule, nil
	case StrategyTrendFollowing:
		return trendFollowingRule, nil
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownStrategy, strategyID)
	}
}
