package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/halver/copysig/indicator"
	"github.com/halver/copysig/shared"
	"github.com/halver/copysig/stats"
	"github.com/rs/zerolog"
)

const (
	// startingBalance is the opening balance of a backtest run.
	startingBalance = float64(10000)
	// lotMultiplier converts a price difference into profit and loss for a
	// standard lot.
	lotMultiplier = float64(100000)
	// warmupBars is the number of bars skipped before trading starts so
	// indicators have enough history.
	warmupBars = 20
	// minBacktestBars is the minimum number of bars a run requires.
	minBacktestBars = 50
	// stopLossPercent is the adverse move of the entry price that stops a
	// position out.
	stopLossPercent = float64(2)
	// takeProfitPercent is the favorable move of the entry price that takes
	// profit.
	takeProfitPercent = float64(3)
)

// Exit reasons recorded on closed trades.
const (
	ReasonStopLoss      = "Stop loss triggered"
	ReasonTakeProfit    = "Take profit triggered"
	ReasonRSIOverbought = "RSI overbought exit"
	ReasonRSIOversold   = "RSI oversold exit"
	ReasonEndOfWindow   = "End of backtest period"
)

// BarSource defines the requirements for supplying the historical bars a
// backtest replays.
type BarSource interface {
	// HistoricalRange fetches bars for the provided pair and window, in
	// ascending time order.
	HistoricalRange(ctx context.Context, pair string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]shared.PriceBar, error)
}

// SimulatorConfig represents the backtest simulator configuration.
type SimulatorConfig struct {
	// Source supplies historical bars.
	Source BarSource
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Simulator replays strategies over historical bars.
type Simulator struct {
	cfg *SimulatorConfig
}

// NewSimulator initializes a new backtest simulator.
func NewSimulator(cfg *SimulatorConfig) *Simulator {
	return &Simulator{
		cfg: cfg,
	}
}

// movePercent returns the percentage move of the close from the entry,
// signed by direction so adverse moves are negative.
func movePercent(direction shared.Direction, entryPrice float64, closePrice float64) float64 {
	switch direction {
	case shared.Sell:
		return ((entryPrice - closePrice) / entryPrice) * 100
	default:
		return ((closePrice - entryPrice) / entryPrice) * 100
	}
}

// exitReason evaluates exit conditions in priority order, returning the
// first matching reason.
func exitReason(pos *position, closePrice float64, rsi float64) (string, bool) {
	move := movePercent(pos.direction, pos.entryPrice, closePrice)

	switch {
	case move < -stopLossPercent:
		return ReasonStopLoss, true
	case move > takeProfitPercent:
		return ReasonTakeProfit, true
	case pos.direction == shared.Buy && rsi > 70:
		return ReasonRSIOverbought, true
	case pos.direction == shared.Sell && rsi < 30:
		return ReasonRSIOversold, true
	default:
		return "", false
	}
}

// pnl converts a price difference into lot scaled profit and loss.
func pnl(direction shared.Direction, entryPrice float64, exitPrice float64) float64 {
	switch direction {
	case shared.Sell:
		return (entryPrice - exitPrice) * lotMultiplier
	default:
		return (exitPrice - entryPrice) * lotMultiplier
	}
}

// Run replays the configured strategy over the requested window and
// aggregates the closed trades into performance metrics.
func (s *Simulator) Run(ctx context.Context, cfg *Config) (*Result, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating backtest config: %w", err)
	}

	rule, err := ruleForStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	bars, err := s.cfg.Source.HistoricalRange(ctx, cfg.Pair, cfg.Timeframe, cfg.Start, cfg.End)
	if err != nil {
		return nil, fmt.Errorf("fetching bars for %s: %w", cfg.Pair, err)
	}

	if len(bars) < minBacktestBars {
		return nil, fmt.Errorf("%w: %d bars for %s, %d required",
			shared.ErrInsufficientData, len(bars), cfg.Pair, minBacktestBars)
	}

	s.cfg.Logger.Info().Msgf("replaying %s over %d %s bars for %s",
		cfg.Strategy, len(bars), cfg.Timeframe.String(), cfg.Pair)

	var trades []Trade
	var currentPosition *position

	balance := startingBalance
	peakBalance := balance
	var maxDrawdown float64

	closePosition := func(bar *shared.PriceBar, reason string) {
		tradePNL := pnl(currentPosition.direction, currentPosition.entryPrice, bar.Close)
		tradePNLPercent := (tradePNL / balance) * 100

		balance += tradePNL
		if balance > peakBalance {
			peakBalance = balance
		}

		drawdown := ((peakBalance - balance) / peakBalance) * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}

		trades = append(trades, Trade{
			ID:         currentPosition.id,
			EntryDate:  currentPosition.entryDate,
			ExitDate:   bar.Date,
			Direction:  currentPosition.direction,
			EntryPrice: currentPosition.entryPrice,
			ExitPrice:  bar.Close,
			PNL:        tradePNL,
			PNLPercent: tradePNLPercent,
			Reason:     reason,
		})

		currentPosition = nil
	}

	closes := shared.Closes(bars)

	for idx := warmupBars; idx < len(bars); idx++ {
		bar := &bars[idx]
		window := closes[:idx+1]

		ind := strategyIndicators{
			rsi:   indicator.RSI(window, indicator.DefaultRSIPeriod),
			sma20: indicator.SMA(window, 20),
			sma50: indicator.SMA(window, 50),
			close: bar.Close,
		}

		switch currentPosition {
		case nil:
			direction, open := rule(ind)
			if open {
				currentPosition = &position{
					id:         uuid.New().String(),
					entryDate:  bar.Date,
					direction:  direction,
					entryPrice: bar.Close,
				}
			}
		default:
			reason, exit := exitReason(currentPosition, bar.Close, ind.rsi)
			if exit {
				closePosition(bar, reason)
			}
		}
	}

	// Force close a position still open at the end of the window.
	if currentPosition != nil {
		closePosition(&bars[len(bars)-1], ReasonEndOfWindow)
	}

	result := &Result{
		Strategy:    cfg.Strategy,
		Pair:        cfg.Pair,
		Timeframe:   cfg.Timeframe,
		Start:       cfg.Start,
		End:         cfg.End,
		TotalTrades: len(trades),
		TotalReturn: ((balance - startingBalance) / startingBalance) * 100,
		MaxDrawdown: maxDrawdown,
		Trades:      trades,
	}

	var winSum, lossSum float64
	pnlPercents := make([]float64, len(trades))
	for idx := range trades {
		pnlPercents[idx] = trades[idx].PNLPercent

		switch {
		case trades[idx].PNL > 0:
			result.WinningTrades++
			winSum += trades[idx].PNL
		case trades[idx].PNL < 0:
			result.LosingTrades++
			lossSum += -trades[idx].PNL
		}
	}

	if result.TotalTrades > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	}
	if result.WinningTrades > 0 {
		result.AverageWin = winSum / float64(result.WinningTrades)
	}
	if result.LosingTrades > 0 {
		result.AverageLoss = lossSum / float64(result.LosingTrades)
	}

	// Fall back to a unit divisor when the run had no losing trades.
	divisor := result.AverageLoss
	if divisor == 0 {
		divisor = 1
	}
	result.ProfitFactor = result.AverageWin / divisor
	result.SharpeRatio = stats.SharpeRatio(pnlPercents)

	return result, nil
}
