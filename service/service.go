package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/halver/copysig/analysis"
	"github.com/halver/copysig/backtest"
	"github.com/halver/copysig/database"
	"github.com/halver/copysig/fetch"
	"github.com/halver/copysig/shared"
	"github.com/halver/copysig/track"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// analysisInterval is how often pairs are analyzed for signals.
	analysisInterval = time.Minute * 15
	// sweepInterval is how often tracked signals are swept.
	sweepInterval = time.Minute
)

// Config represents the configuration struct for the signals service.
type Config struct {
	// Pairs represents the analyzed currency pairs.
	Pairs []string
	// Timeframe is the bar timeframe driving analysis.
	Timeframe shared.Timeframe
	// AlphaVantageAPIKey is the Alpha Vantage service API Key.
	AlphaVantageAPIKey string
	// Synthetic switches the service to synthesized price data only.
	Synthetic bool
	// DatabaseEndpoint represents the database connection endpoint. An empty
	// endpoint disables persistence.
	DatabaseEndpoint string
	// DatabaseUser is the database user.
	DatabaseUser string
	// DatabasePass is the database user pass.
	DatabasePass string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if len(cfg.Pairs) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no pairs provided for signals service"))
	}
	if !cfg.Synthetic && cfg.AlphaVantageAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("alpha vantage api key cannot be an empty string"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Service represents the copy trading signals service.
type Service struct {
	cfg          *Config
	fetchManager *fetch.Manager
	engine       *analysis.Engine
	tracker      *track.Manager
	simulator    *backtest.Simulator
	db           *database.Database
	jobScheduler *gocron.Scheduler
	logger       *zerolog.Logger
	wg           sync.WaitGroup
}

// New initializes a new signals service.
func New(ctx context.Context, cfg *Config) (*Service, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating service config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "signals").Logger()

	// Providers are registered in failover order, the synthetic source is
	// always last so price data never goes fully dark.
	providers := []fetch.Provider{}
	if !cfg.Synthetic {
		providers = append(providers,
			fetch.NewAlphaVantageClient(&fetch.AlphaVantageConfig{APIKey: cfg.AlphaVantageAPIKey}),
			fetch.NewBinanceClient(&fetch.BinanceConfig{}),
		)
	}
	providers = append(providers, fetch.NewSynthetic())

	fetchMgrLogger := logger.With().Str("component", "fetchmanager").Logger()
	fetchMgr, err := fetch.NewManager(&fetch.ManagerConfig{
		Providers: providers,
		Logger:    fetchMgrLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fetch manager: %v", err)
	}

	var db *database.Database
	persistClosedSignal := func(signal *shared.Signal) error {
		return nil
	}

	if cfg.DatabaseEndpoint != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		db, err = database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DatabaseEndpoint,
			User:     cfg.DatabaseUser,
			Pass:     cfg.DatabasePass,
			Logger:   dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %v", err)
		}

		persistClosedSignal = func(signal *shared.Signal) error {
			persistCtx, cancel := context.WithTimeout(context.Background(), shared.TimeoutDuration)
			defer cancel()

			return db.PersistClosedSignal(persistCtx, signal)
		}
	}

	trackerLogger := logger.With().Str("component", "tracker").Logger()
	tracker := track.NewManager(&track.ManagerConfig{
		Provider:            fetchMgr,
		PersistClosedSignal: persistClosedSignal,
		Notify: func(message string) {
			logger.Info().Msg(message)
		},
		Logger: trackerLogger,
	})

	engineLogger := logger.With().Str("component", "engine").Logger()
	engine := analysis.NewEngine(&analysis.EngineConfig{
		Pairs:     cfg.Pairs,
		Timeframe: cfg.Timeframe,
		Provider:  fetchMgr,
		SendSignal: func(signal *shared.Signal) {
			tracker.SendSignal(*signal)
		},
		Logger: engineLogger,
	})

	simulatorLogger := logger.With().Str("component", "simulator").Logger()
	simulator := backtest.NewSimulator(&backtest.SimulatorConfig{
		Source: fetchMgr,
		Logger: simulatorLogger,
	})

	service := &Service{
		cfg:          cfg,
		fetchManager: fetchMgr,
		engine:       engine,
		tracker:      tracker,
		simulator:    simulator,
		db:           db,
		jobScheduler: gocron.NewScheduler(time.UTC),
		logger:       &logger,
	}

	return service, nil
}

// scheduleJobs registers the recurring analysis and sweep jobs.
func (s *Service) scheduleJobs() error {
	_, err := s.jobScheduler.Every(analysisInterval).Do(s.engine.SignalAnalysis)
	if err != nil {
		return fmt.Errorf("scheduling analysis job: %v", err)
	}

	_, err = s.jobScheduler.Every(sweepInterval).Do(s.tracker.SignalSweep)
	if err != nil {
		return fmt.Errorf("scheduling sweep job: %v", err)
	}

	return nil
}

// RunBacktest replays the provided backtest against historical price data.
func (s *Service) RunBacktest(ctx context.Context, cfg *backtest.Config) (*backtest.Result, error) {
	return s.simulator.Run(ctx, cfg)
}

// ProviderStatuses describes the health of the configured price providers.
func (s *Service) ProviderStatuses() []fetch.ProviderStatus {
	return s.fetchManager.ProviderStatuses()
}

// Run handles the lifecycle processes of the signals service.
func (s *Service) Run(ctx context.Context) error {
	err := s.scheduleJobs()
	if err != nil {
		return err
	}

	s.wg.Add(2)

	go func() {
		s.tracker.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.engine.Run(ctx)
		s.wg.Done()
	}()

	s.jobScheduler.StartAsync()

	// Kick off an immediate analysis pass instead of waiting out the first
	// scheduled interval.
	s.engine.SignalAnalysis()

	<-ctx.Done()
	s.jobScheduler.Stop()
	s.wg.Wait()

	return nil
}
