package track

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/halver/copysig/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

// quoteProvider serves settable current prices.
type quoteProvider struct {
	mtx    sync.Mutex
	prices map[string]float64
}

func (q *quoteProvider) setPrice(pair string, price float64) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.prices[pair] = price
}

func (q *quoteProvider) CurrentPrice(ctx context.Context, pair string) (*shared.PriceQuote, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return &shared.PriceQuote{
		Pair:      pair,
		Price:     q.prices[pair],
		Timestamp: time.Now().UTC(),
	}, nil
}

func (q *quoteProvider) HistoricalBars(ctx context.Context, pair string, timeframe shared.Timeframe, count int) ([]shared.PriceBar, error) {
	return nil, nil
}

func setupManager() (*Manager, *quoteProvider, chan string, chan *shared.Signal) {
	provider := &quoteProvider{prices: map[string]float64{}}
	notifyMsgs := make(chan string, 10)
	persisted := make(chan *shared.Signal, 10)

	cfg := &ManagerConfig{
		Provider: provider,
		PersistClosedSignal: func(signal *shared.Signal) error {
			persisted <- signal
			return nil
		},
		Notify: func(message string) {
			notifyMsgs <- message
		},
		Logger: log.Logger,
	}

	return NewManager(cfg), provider, notifyMsgs, persisted
}

// sweepAndWait triggers a sweep and blocks until it completes.
func sweepAndWait(t *testing.T, mgr *Manager) {
	t.Helper()

	before := mgr.LastSweep()
	mgr.SignalSweep()

	deadline := time.Now().Add(time.Second * 2)
	for time.Now().Before(deadline) {
		if mgr.LastSweep().After(before) {
			return
		}
		time.Sleep(time.Millisecond * 10)
	}

	t.Fatal("timed out waiting for sweep")
}

func activeSignals(t *testing.T, mgr *Manager, pair string) []shared.Signal {
	t.Helper()

	req := shared.NewActiveSignalsRequest(pair)
	mgr.SendActiveSignalsRequest(req)

	select {
	case signals := <-req.Response:
		return signals
	case <-time.After(time.Second * 2):
		t.Fatal("timed out waiting for active signals")
		return nil
	}
}

func buySignal(pair string, createdOn time.Time) shared.Signal {
	return shared.Signal{
		ID:         uuid.New().String(),
		Pair:       pair,
		Direction:  shared.Buy,
		EntryPrice: 1.1,
		StopLoss:   1.08,
		TakeProfit: 1.13,
		Confidence: 80,
		Timeframe:  shared.OneHour,
		CreatedOn:  createdOn,
		Status:     shared.SignalActive,
	}
}

func TestManager(t *testing.T) {
	mgr, provider, notifyMsgs, persisted := setupManager()

	// Ensure the signal tracker can be started.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		mgr.Run(ctx)
		close(done)
	}()

	// Ensure the tracker picks up new signals.
	provider.setPrice("EURUSD", 1.095)
	mgr.SendSignal(buySignal("EURUSD", time.Now().UTC()))
	msg := <-notifyMsgs
	assert.True(t, strings.Contains(msg, "Tracking new BUY signal"))

	// A sweep with the price between the levels resolves nothing.
	sweepAndWait(t, mgr)
	assert.Equal(t, len(activeSignals(t, mgr, "EURUSD")), 1)

	// A sweep with the price beyond the take profit closes the signal.
	provider.setPrice("EURUSD", 1.131)
	sweepAndWait(t, mgr)

	closed := <-persisted
	assert.Equal(t, closed.Status, shared.SignalHitTakeProfit)
	assert.Equal(t, closed.ExitPrice, 1.131)
	assert.True(t, closed.PNLPercent > 0)

	msg = <-notifyMsgs
	assert.True(t, strings.Contains(msg, "HIT_TP"))
	assert.Equal(t, len(activeSignals(t, mgr, "EURUSD")), 0)

	// Ensure the resolved outcome feeds the performance metrics.
	metricsReq := NewMetricsRequest()
	mgr.SendMetricsRequest(metricsReq)
	metrics := <-metricsReq.Response
	assert.Equal(t, metrics.TotalTrades, 1)
	assert.Equal(t, metrics.WinningTrades, 1)
	assert.Equal(t, metrics.WinRate, float64(100))

	// Ensure the signal tracker can be gracefully shutdown.
	cancel()
	<-done
}

func TestManagerStopsOutSignal(t *testing.T) {
	mgr, provider, notifyMsgs, persisted := setupManager()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	provider.setPrice("EURUSD", 1.095)
	mgr.SendSignal(buySignal("EURUSD", time.Now().UTC()))
	<-notifyMsgs

	provider.setPrice("EURUSD", 1.0799)
	sweepAndWait(t, mgr)

	closed := <-persisted
	assert.Equal(t, closed.Status, shared.SignalHitStopLoss)
	assert.True(t, closed.PNLPercent < 0)
}

func TestManagerExpiresStaleSignal(t *testing.T) {
	mgr, provider, notifyMsgs, persisted := setupManager()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	// A signal older than the expiry window with the price still between
	// the levels resolves as expired.
	provider.setPrice("EURUSD", 1.102)
	mgr.SendSignal(buySignal("EURUSD", time.Now().UTC().Add(-shared.SignalExpiry-time.Hour)))
	<-notifyMsgs

	sweepAndWait(t, mgr)

	closed := <-persisted
	assert.Equal(t, closed.Status, shared.SignalExpired)
	assert.Equal(t, len(activeSignals(t, mgr, "")), 0)
}

func TestResolveStatus(t *testing.T) {
	now := time.Now().UTC()
	fresh := buySignal("EURUSD", now)

	sell := fresh
	sell.Direction = shared.Sell
	sell.StopLoss = 1.13
	sell.TakeProfit = 1.08

	stale := buySignal("EURUSD", now.Add(-shared.SignalExpiry-time.Minute))

	tests := []struct {
		name         string
		signal       *shared.Signal
		price        float64
		wantStatus   shared.SignalStatus
		wantTerminal bool
	}{
		{
			name:         "buy between levels stays active",
			signal:       &fresh,
			price:        1.1,
			wantStatus:   shared.SignalActive,
			wantTerminal: false,
		},
		{
			name:         "buy at stop loss",
			signal:       &fresh,
			price:        1.08,
			wantStatus:   shared.SignalHitStopLoss,
			wantTerminal: true,
		},
		{
			name:         "buy at take profit",
			signal:       &fresh,
			price:        1.13,
			wantStatus:   shared.SignalHitTakeProfit,
			wantTerminal: true,
		},
		{
			name:         "sell at stop loss",
			signal:       &sell,
			price:        1.14,
			wantStatus:   shared.SignalHitStopLoss,
			wantTerminal: true,
		},
		{
			name:         "sell at take profit",
			signal:       &sell,
			price:        1.07,
			wantStatus:   shared.SignalHitTakeProfit,
			wantTerminal: true,
		},
		{
			name:         "stale signal expires",
			signal:       &stale,
			price:        1.1,
			wantStatus:   shared.SignalExpired,
			wantTerminal: true,
		},
		{
			name:         "levels outrank expiry",
			signal:       &stale,
			price:        1.135,
			wantStatus:   shared.SignalHitTakeProfit,
			wantTerminal: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, terminal := resolveStatus(test.signal, test.price, now)
			assert.Equal(t, status, test.wantStatus)
			assert.Equal(t, terminal, test.wantTerminal)
		})
	}
}

func TestAbandonedMetricsRequest(t *testing.T) {
	// Ensure answering a metrics request never blocks on a caller that
	// abandoned its response channel.
	mgr, _, _, _ := setupManager()

	abandoned := NewMetricsRequest()
	mgr.handleMetricsRequest(&abandoned)

	answered := NewMetricsRequest()
	mgr.handleMetricsRequest(&answered)

	metrics := <-answered.Response
	assert.Equal(t, metrics.TotalTrades, 0)
}

func TestFillManagerChannels(t *testing.T) {
	// Ensure sends to an unstarted tracker never block once the channels
	// are at capacity.
	mgr, _, _, _ := setupManager()

	for range bufferSize + 2 {
		mgr.SignalSweep()
		mgr.SendSignal(buySignal("EURUSD", time.Now().UTC()))
		mgr.SendMetricsRequest(NewMetricsRequest())
		mgr.SendActiveSignalsRequest(shared.NewActiveSignalsRequest(""))
	}
}
