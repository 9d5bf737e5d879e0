package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/halver/copysig/shared"
)

// Config represents a backtest request.
type Config struct {
	// Strategy is the id of the strategy to replay.
	Strategy string
	// Pair is the traded pair.
	Pair string
	// Timeframe is the bar interval replayed.
	Timeframe shared.Timeframe
	// Start and End bound the replayed window.
	Start time.Time
	End   time.Time
	// Parameters carries optional strategy parameters.
	Parameters map[string]float64
}

// Validate asserts the config has sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Pair == "" {
		errs = errors.Join(errs, fmt.Errorf("pair cannot be an empty string"))
	}
	if cfg.Strategy == "" {
		errs = errors.Join(errs, fmt.Errorf("strategy cannot be an empty string"))
	}
	if !cfg.Start.Before(cfg.End) {
		errs = errors.Join(errs, fmt.Errorf("start %s must be before end %s",
			cfg.Start.Format(time.RFC3339), cfg.End.Format(time.RFC3339)))
	}

	return errs
}

// position represents the single open position of a backtest run.
type position struct {
	id         string
	entryDate  time.Time
	direction  shared.Direction
	entryPrice float64
}

// Trade represents a closed position recorded by a backtest run. A trade is
// immutable once recorded.
type Trade struct {
	ID         string
	EntryDate  time.Time
	ExitDate   time.Time
	Direction  shared.Direction
	EntryPrice float64
	ExitPrice  float64
	PNL        float64
	PNLPercent float64
	Reason     string
}

// Result represents the outcome of a backtest run.
type Result struct {
	Strategy      string
	Pair          string
	Timeframe     shared.Timeframe
	Start         time.Time
	End           time.Time
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	TotalReturn   float64
	MaxDrawdown   float64
	SharpeRatio   float64
	ProfitFactor  float64
	AverageWin    float64
	AverageLoss   float64
	Trades        []Trade
}
