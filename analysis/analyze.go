package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/halver/copysig/indicator"
	"github.com/halver/copysig/shared"
)

const (
	// minVolatility and maxVolatility clamp the bandwidth derived
	// volatility estimate used for stop and target placement.
	minVolatility = 0.001
	maxVolatility = 0.01

	// stopLossVolatilityFactor and takeProfitVolatilityFactor size the stop
	// and target distances from the entry.
	stopLossVolatilityFactor   = float64(2)
	takeProfitVolatilityFactor = float64(3)
)

// volatilityEstimate derives a clamped volatility estimate from the
// Bollinger envelope.
func volatilityEstimate(bands indicator.Bands) float64 {
	if bands.Middle == 0 {
		return minVolatility
	}

	bandwidth := bands.Bandwidth() / bands.Middle
	return math.Max(minVolatility, math.Min(maxVolatility, bandwidth))
}

// Analyze folds the ordered vote rules over the provided market evidence and
// returns a signal when the combined confidence crosses the emission
// threshold, or nil when the evidence does not support one. The first rule
// to set a direction wins; later rules add confidence only when they agree.
func Analyze(pair string, timeframe shared.Timeframe, price float64, indicators *indicator.Snapshot,
	volume float64, at time.Time) *shared.Signal {
	ctx := &voteContext{
		pair:       pair,
		price:      price,
		indicators: indicators,
		volume:     volume,
	}

	confidence := baseConfidence
	var direction shared.Direction
	var directionSet bool
	notes := make([]string, 0, len(defaultRules))

	for idx := range defaultRules {
		v, ok := defaultRules[idx].evaluate(ctx)
		if !ok {
			continue
		}

		notes = append(notes, v.note)

		switch {
		case !v.hasDirection:
			confidence += v.weight
		case !directionSet:
			direction = v.direction
			directionSet = true
			confidence += v.weight
		case direction == v.direction:
			confidence += v.weight
		}
	}

	if !directionSet || confidence < minConfidence {
		return nil
	}

	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	volatility := volatilityEstimate(indicators.Bollinger)

	var stopLoss, takeProfit float64
	switch direction {
	case shared.Sell:
		stopLoss = price + price*volatility*stopLossVolatilityFactor
		takeProfit = price - price*volatility*takeProfitVolatilityFactor
	default:
		stopLoss = price - price*volatility*stopLossVolatilityFactor
		takeProfit = price + price*volatility*takeProfitVolatilityFactor
	}

	riskReward := math.Abs(takeProfit-price) / math.Abs(price-stopLoss)

	return &shared.Signal{
		ID:         uuid.New().String(),
		Pair:       pair,
		Direction:  direction,
		EntryPrice: shared.RoundPrice(pair, price),
		StopLoss:   shared.RoundPrice(pair, stopLoss),
		TakeProfit: shared.RoundPrice(pair, takeProfit),
		Confidence: confidence,
		Analysis:   fmt.Sprintf("Technical analysis: %s", strings.Join(notes, ", ")),
		Timeframe:  timeframe,
		CreatedOn:  at,
		RiskReward: math.Round(riskReward*10) / 10,
		Status:     shared.SignalActive,
	}
}
