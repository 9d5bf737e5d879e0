package service

import (
	"context"
	"testing"
	"time"

	"github.com/halver/copysig/backtest"
	"github.com/halver/copysig/shared"
	"github.com/peterldowns/testy/assert"
)

func TestConfigValidate(t *testing.T) {
	cancel := context.CancelFunc(func() {})

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid synthetic config",
			cfg: Config{
				Pairs:     []string{"EURUSD"},
				Timeframe: shared.OneHour,
				Synthetic: true,
				Cancel:    cancel,
			},
			wantErr: false,
		},
		{
			name: "missing pairs",
			cfg: Config{
				Timeframe: shared.OneHour,
				Synthetic: true,
				Cancel:    cancel,
			},
			wantErr: true,
		},
		{
			name: "missing api key without synthetic data",
			cfg: Config{
				Pairs:     []string{"EURUSD"},
				Timeframe: shared.OneHour,
				Cancel:    cancel,
			},
			wantErr: true,
		},
		{
			name: "missing cancel func",
			cfg: Config{
				Pairs:     []string{"EURUSD"},
				Timeframe: shared.OneHour,
				Synthetic: true,
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServiceGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &Config{
		Pairs:     []string{"EURUSD", "BTCUSD"},
		Timeframe: shared.OneHour,
		Synthetic: true,
		Cancel:    cancel,
	}

	svc, err := New(ctx, cfg)
	assert.NoError(t, err)

	statuses := svc.ProviderStatuses()
	assert.Equal(t, len(statuses), 1)
	assert.Equal(t, statuses[0].Name, "synthetic")

	// Ensure the signals service can be run and gracefully terminated.
	time.AfterFunc(time.Second*2, func() {
		cancel()
	})
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	<-done
}

func TestServiceRunBacktest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &Config{
		Pairs:     []string{"EURUSD"},
		Timeframe: shared.OneHour,
		Synthetic: true,
		Cancel:    cancel,
	}

	svc, err := New(ctx, cfg)
	assert.NoError(t, err)

	end := time.Now().UTC().Truncate(time.Hour)
	start := end.Add(-time.Hour * 24 * 14)

	result, err := svc.RunBacktest(ctx, &backtest.Config{
		Strategy:  backtest.StrategyRSIMeanReversion,
		Pair:      "EURUSD",
		Timeframe: shared.OneHour,
		Start:     start,
		End:       end,
	})
	assert.NoError(t, err)
	assert.Equal(t, result.Pair, "EURUSD")
	assert.True(t, result.WinRate >= 0)
	assert.True(t, result.WinRate <= 100)
	assert.Equal(t, result.TotalTrades, result.WinningTrades+result.LosingTrades+countFlatTrades(result))
}

// countFlatTrades counts trades that closed exactly at their entry.
func countFlatTrades(result *backtest.Result) int {
	var flat int
	for idx := range result.Trades {
		if result.Trades[idx].PNL == 0 {
			flat++
		}
	}

	return flat
}
