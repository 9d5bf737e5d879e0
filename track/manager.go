package track

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/halver/copysig/shared"
	"github.com/halver/copysig/stats"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent workers.
	maxWorkers = 8
)

// MetricsRequest represents a performance metrics request.
type MetricsRequest struct {
	Response chan stats.PerformanceMetrics
}

// NewMetricsRequest initializes a new performance metrics request. The
// response channel is buffered so an abandoning caller cannot strand the
// responding worker.
func NewMetricsRequest() MetricsRequest {
	return MetricsRequest{
		Response: make(chan stats.PerformanceMetrics, 1),
	}
}

// ManagerConfig represents the signal tracker configuration.
type ManagerConfig struct {
	// Provider is the price provider used to mark active signals.
	Provider shared.PriceProvider
	// PersistClosedSignal persists the provided closed signal to the database.
	PersistClosedSignal func(signal *shared.Signal) error
	// Notify sends the provided message.
	Notify func(message string)
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Manager tracks signals through their lifecycles.
type Manager struct {
	cfg             *ManagerConfig
	signals         []*shared.Signal
	signalsMtx      sync.RWMutex
	history         *OutcomeHistory
	lastSweep       atomic.Time
	newSignals      chan shared.Signal
	sweepSignals    chan struct{}
	metricsRequests chan MetricsRequest
	activeRequests  chan shared.ActiveSignalsRequest
	workers         chan struct{}
}

// NewManager initializes a new signal tracker.
func NewManager(cfg *ManagerConfig) *Manager {
	return &Manager{
		cfg:             cfg,
		signals:         []*shared.Signal{},
		history:         NewOutcomeHistory(),
		newSignals:      make(chan shared.Signal, bufferSize),
		sweepSignals:    make(chan struct{}, bufferSize),
		metricsRequests: make(chan MetricsRequest, bufferSize),
		activeRequests:  make(chan shared.ActiveSignalsRequest, bufferSize),
		workers:         make(chan struct{}, maxWorkers),
	}
}

// SendSignal relays the provided signal for tracking.
func (m *Manager) SendSignal(signal shared.Signal) {
	select {
	case m.newSignals <- signal:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("new signal channel at capacity: %d/%d",
			len(m.newSignals), bufferSize)
	}
}

// SignalSweep triggers a sweep of all tracked signals.
func (m *Manager) SignalSweep() {
	select {
	case m.sweepSignals <- struct{}{}:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("sweep signal channel at capacity: %d/%d",
			len(m.sweepSignals), bufferSize)
	}
}

// SendMetricsRequest relays the provided metrics request for processing.
func (m *Manager) SendMetricsRequest(req MetricsRequest) {
	select {
	case m.metricsRequests <- req:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("metrics request channel at capacity: %d/%d",
			len(m.metricsRequests), bufferSize)
	}
}

// SendActiveSignalsRequest relays the provided active signals request for
// processing.
func (m *Manager) SendActiveSignalsRequest(req shared.ActiveSignalsRequest) {
	select {
	case m.activeRequests <- req:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("active signals request channel at capacity: %d/%d",
			len(m.activeRequests), bufferSize)
	}
}

// LastSweep returns the time of the most recent completed sweep.
func (m *Manager) LastSweep() time.Time {
	return m.lastSweep.Load()
}

// handleSignal starts tracking the provided signal.
func (m *Manager) handleSignal(signal *shared.Signal) {
	if signal.Status.Terminal() {
		m.cfg.Logger.Error().Msgf("refusing to track %s signal %s for %s",
			signal.Status.String(), signal.ID, signal.Pair)
		return
	}

	m.signalsMtx.Lock()
	m.signals = append(m.signals, signal)
	m.signalsMtx.Unlock()

	msg := fmt.Sprintf("Tracking new %s signal (%s) for %s @ %f with stoploss %f and take profit %f",
		signal.Direction.String(), signal.ID, signal.Pair, signal.EntryPrice, signal.StopLoss, signal.TakeProfit)
	m.cfg.Notify(msg)
}

// resolveStatus evaluates the provided signal against the current price,
// returning the terminal status it resolves to.
func resolveStatus(signal *shared.Signal, price float64, now time.Time) (shared.SignalStatus, bool) {
	switch signal.Direction {
	case shared.Buy:
		switch {
		case price <= signal.StopLoss:
			return shared.SignalHitStopLoss, true
		case price >= signal.TakeProfit:
			return shared.SignalHitTakeProfit, true
		}
	case shared.Sell:
		switch {
		case price >= signal.StopLoss:
			return shared.SignalHitStopLoss, true
		case price <= signal.TakeProfit:
			return shared.SignalHitTakeProfit, true
		}
	}

	if now.Sub(signal.CreatedOn) > shared.SignalExpiry {
		return shared.SignalExpired, true
	}

	return shared.SignalActive, false
}

// closeSignal resolves the provided signal with the given terminal status.
func (m *Manager) closeSignal(signal *shared.Signal, status shared.SignalStatus, price float64, now time.Time) {
	signal.Status = status
	signal.ExitPrice = price
	signal.ClosedOn = now
	signal.UpdatePNLPercent(price)

	err := m.cfg.PersistClosedSignal(signal)
	if err != nil {
		m.cfg.Logger.Error().Msgf("persisting closed signal %s: %v", signal.ID, err)
	}

	m.history.Add(&shared.SignalOutcome{
		SignalID:   signal.ID,
		Pair:       signal.Pair,
		Status:     status,
		PNLPercent: signal.PNLPercent,
		Duration:   now.Sub(signal.CreatedOn),
	})

	msg := fmt.Sprintf("Closed %s signal (%s) for %s @ %f (%s, %.2f%%)",
		signal.Direction.String(), signal.ID, signal.Pair, price, status.String(), signal.PNLPercent)
	m.cfg.Notify(msg)
}

// handleSweep evaluates all tracked signals against current prices and
// resolves the ones that hit their levels or expired.
func (m *Manager) handleSweep(ctx context.Context) {
	m.signalsMtx.Lock()
	defer m.signalsMtx.Unlock()

	now := time.Now().UTC()
	quotes := make(map[string]*shared.PriceQuote)

	for idx := len(m.signals) - 1; idx >= 0; idx-- {
		signal := m.signals[idx]

		quote, ok := quotes[signal.Pair]
		if !ok {
			fetchCtx, cancel := context.WithTimeout(ctx, shared.TimeoutDuration)
			var err error
			quote, err = m.cfg.Provider.CurrentPrice(fetchCtx, signal.Pair)
			cancel()
			if err != nil {
				m.cfg.Logger.Warn().Msgf("fetching current price for %s: %v", signal.Pair, err)
				continue
			}

			quotes[signal.Pair] = quote
		}

		status, terminal := resolveStatus(signal, quote.Price, now)
		if !terminal {
			continue
		}

		m.closeSignal(signal, status, quote.Price, now)
		m.signals = slices.Delete(m.signals, idx, idx+1)
	}

	m.lastSweep.Store(now)
}

// handleMetricsRequest processes the provided metrics request.
func (m *Manager) handleMetricsRequest(req *MetricsRequest) {
	m.signalsMtx.RLock()
	pnls := m.history.PNLPercents()
	m.signalsMtx.RUnlock()

	req.Response <- stats.Summarize(pnls)
}

// handleActiveSignalsRequest processes the provided active signals request.
func (m *Manager) handleActiveSignalsRequest(req *shared.ActiveSignalsRequest) {
	m.signalsMtx.RLock()
	defer m.signalsMtx.RUnlock()

	active := make([]shared.Signal, 0, len(m.signals))
	for idx := range m.signals {
		if req.Pair == "" || m.signals[idx].Pair == req.Pair {
			active = append(active, *m.signals[idx])
		}
	}

	req.Response <- active
}

// Run manages the lifecycle processes of the signal tracker.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case signal := <-m.newSignals:
			m.workers <- struct{}{}
			go func(signal *shared.Signal) {
				m.handleSignal(signal)
				<-m.workers
			}(&signal)
		case <-m.sweepSignals:
			// Sweeps resolve signals and mutate tracked state, they run on
			// the manager goroutine.
			m.handleSweep(ctx)
		case req := <-m.metricsRequests:
			m.workers <- struct{}{}
			go func(req *MetricsRequest) {
				m.handleMetricsRequest(req)
				<-m.workers
			}(&req)
		case req := <-m.activeRequests:
			m.workers <- struct{}{}
			go func(req *shared.ActiveSignalsRequest) {
				m.handleActiveSignalsRequest(req)
				<-m.workers
			}(&req)
		}
	}
}
