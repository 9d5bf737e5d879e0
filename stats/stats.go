// Package stats aggregates trade and signal outcomes into performance
// metrics. All functions are pure over their inputs and safe on empty input.
package stats

import (
	"math"
)

// PerformanceMetrics represents aggregate performance derived from a
// sequence of profit and loss values.
type PerformanceMetrics struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AveragePNL    float64
	TotalPNL      float64
	MaxDrawdown   float64
	SharpeRatio   float64
	ProfitFactor  float64
	AverageWin    float64
	AverageLoss   float64
}

// Mean returns the arithmetic mean of the provided values, zero for an
// empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for idx := range values {
		sum += values[idx]
	}

	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of the provided values,
// zero for an empty input.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)

	var variance float64
	for idx := range values {
		diff := values[idx] - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

// SharpeRatio returns the mean of the provided returns divided by their
// standard deviation, zero when the deviation is zero.
func SharpeRatio(returns []float64) float64 {
	stdDev := StdDev(returns)
	if stdDev == 0 {
		return 0
	}

	return Mean(returns) / stdDev
}

// MaxDrawdown returns the largest peak to trough decline of the cumulative
// sum of the provided values.
func MaxDrawdown(pnls []float64) float64 {
	var peak, running, maxDrawdown float64

	for idx := range pnls {
		running += pnls[idx]
		if running > peak {
			peak = running
		}

		drawdown := peak - running
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// Summarize converts the provided profit and loss values into performance
// metrics. An empty input reports zero for every field.
func Summarize(pnls []float64) PerformanceMetrics {
	metrics := PerformanceMetrics{
		TotalTrades: len(pnls),
	}

	if len(pnls) == 0 {
		return metrics
	}

	var winSum, lossSum float64
	for idx := range pnls {
		switch {
		case pnls[idx] > 0:
			metrics.WinningTrades++
			winSum += pnls[idx]
		case pnls[idx] < 0:
			metrics.LosingTrades++
			lossSum += -pnls[idx]
		}
		metrics.TotalPNL += pnls[idx]
	}

	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades) * 100
	metrics.AveragePNL = metrics.TotalPNL / float64(metrics.TotalTrades)
	metrics.MaxDrawdown = MaxDrawdown(pnls)
	metrics.SharpeRatio = SharpeRatio(pnls)

	if metrics.WinningTrades > 0 {
		metrics.AverageWin = winSum / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AverageLoss = lossSum / float64(metrics.LosingTrades)
	}

	// Fall back to a unit divisor when no losing trades were recorded.
	divisor := metrics.AverageLoss
	if divisor == 0 {
		divisor = 1
	}
	metrics.ProfitFactor = metrics.AverageWin / divisor

	return metrics
}
