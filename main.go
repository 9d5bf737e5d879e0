package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/halver/copysig/service"
	"github.com/halver/copysig/shared"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	if cfg.Timeframe == "" {
		cfg.Timeframe = "1h"
	}

	timeframe, err := shared.ParseTimeframe(cfg.Timeframe)
	if err != nil {
		log.Printf("parsing timeframe: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svcCfg := service.Config{
		Pairs:              cfg.Pairs,
		Timeframe:          timeframe,
		AlphaVantageAPIKey: cfg.AlphaVantageAPIKey,
		Synthetic:          cfg.Synthetic,
		DatabaseEndpoint:   cfg.DatabaseEndpoint,
		DatabaseUser:       cfg.DatabaseUser,
		DatabasePass:       cfg.DatabasePass,
		Cancel:             cancel,
	}
	svc, err := service.New(ctx, &svcCfg)
	if err != nil {
		log.Printf("creating signals service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	err = svc.Run(ctx)
	if err != nil {
		log.Printf("running signals service: %v", err)
	}
}
