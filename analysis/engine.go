package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/halver/copysig/indicator"
	"github.com/halver/copysig/shared"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent workers.
	maxWorkers = 8
	// historyBarCount is the number of historical bars fetched per pair.
	historyBarCount = 50
	// minHistoryBars is the minimum history required to analyze a pair.
	minHistoryBars = 20
)

// EngineConfig represents the analysis engine configuration.
type EngineConfig struct {
	// Pairs represents the tracked pairs.
	Pairs []string
	// Timeframe is the analysis timeframe.
	Timeframe shared.Timeframe
	// Provider supplies current and historical market data.
	Provider shared.PriceProvider
	// SendSignal relays the provided signal for tracking.
	SendSignal func(signal *shared.Signal)
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Engine analyzes tracked pairs and emits trading signals.
type Engine struct {
	cfg             *EngineConfig
	analysisSignals chan struct{}
	workers         chan struct{}
}

// NewEngine initializes a new analysis engine.
func NewEngine(cfg *EngineConfig) *Engine {
	return &Engine{
		cfg:             cfg,
		analysisSignals: make(chan struct{}, bufferSize),
		workers:         make(chan struct{}, maxWorkers),
	}
}

// SignalAnalysis triggers an analysis pass over all tracked pairs.
func (e *Engine) SignalAnalysis() {
	select {
	case e.analysisSignals <- struct{}{}:
		// do nothing.
	default:
		e.cfg.Logger.Error().Msgf("analysis signal channel at capacity: %d/%d",
			len(e.analysisSignals), bufferSize)
	}
}

// analyzePair analyzes a single pair, emitting a signal when the evidence
// supports one. Provider failures and short history skip the pair.
func (e *Engine) analyzePair(ctx context.Context, pair string) {
	ctx, cancel := context.WithTimeout(ctx, shared.TimeoutDuration)
	defer cancel()

	quote, err := e.cfg.Provider.CurrentPrice(ctx, pair)
	if err != nil {
		e.cfg.Logger.Warn().Msgf("fetching current price for %s, skipping: %v", pair, err)
		return
	}

	bars, err := e.cfg.Provider.HistoricalBars(ctx, pair, e.cfg.Timeframe, historyBarCount)
	if err != nil {
		e.cfg.Logger.Warn().Msgf("fetching historical bars for %s, skipping: %v", pair, err)
		return
	}

	if len(bars) < minHistoryBars {
		e.cfg.Logger.Debug().Msgf("%d bars of history for %s, %d required, skipping",
			len(bars), pair, minHistoryBars)
		return
	}

	snapshot := indicator.NewSnapshot(shared.Closes(bars))

	signal := Analyze(pair, e.cfg.Timeframe, quote.Price, snapshot, quote.Volume, time.Now().UTC())
	if signal == nil {
		return
	}

	e.cfg.SendSignal(signal)
}

// handleAnalysis processes an analysis pass, isolating pair failures from
// one another.
func (e *Engine) handleAnalysis(ctx context.Context) {
	var wg sync.WaitGroup

	for idx := range e.cfg.Pairs {
		pair := e.cfg.Pairs[idx]

		e.workers <- struct{}{}
		wg.Add(1)
		go func(pair string) {
			defer wg.Done()
			e.analyzePair(ctx, pair)
			<-e.workers
		}(pair)
	}

	wg.Wait()
}

// Run manages the lifecycle processes of the analysis engine.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.analysisSignals:
			e.handleAnalysis(ctx)
		}
	}
}
