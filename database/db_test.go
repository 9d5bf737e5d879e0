package database

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"github.com/halver/copysig/shared"
)

func TestGenerateMetadataID(t *testing.T) {
	now := time.Date(2025, time.February, 16, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, generateMetadataID(now, "EURUSD"), "February-Week-2-EURUSD")
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name            string
		status          shared.SignalStatus
		pnlPercent      float64
		wantWin         int
		wantWinPercent  float64
		wantLoss        int
		wantLossPercent float64
	}{
		{
			name:           "take profit counts as a win",
			status:         shared.SignalHitTakeProfit,
			pnlPercent:     2.5,
			wantWin:        1,
			wantWinPercent: 2.5,
		},
		{
			name:            "stop loss counts as a loss",
			status:          shared.SignalHitStopLoss,
			pnlPercent:      -1.8,
			wantLoss:        1,
			wantLossPercent: -1.8,
		},
		{
			name:       "expiring flat counts as neither",
			status:     shared.SignalExpired,
			pnlPercent: 0,
		},
		{
			name:            "expiring underwater counts as a loss",
			status:          shared.SignalExpired,
			pnlPercent:      -0.4,
			wantLoss:        1,
			wantLossPercent: -0.4,
		},
		{
			name:       "active signals are not tallied",
			status:     shared.SignalActive,
			pnlPercent: 1.2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			signal := &shared.Signal{
				Status:     test.status,
				PNLPercent: test.pnlPercent,
			}

			win, winpercent, loss, losspercent := classifyOutcome(signal)
			assert.Equal(t, win, test.wantWin)
			assert.Equal(t, winpercent, test.wantWinPercent)
			assert.Equal(t, loss, test.wantLoss)
			assert.Equal(t, losspercent, test.wantLossPercent)
		})
	}
}
