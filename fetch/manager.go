package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/halver/copysig/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// quoteCacheTTL is how long a fetched quote stays fresh.
	quoteCacheTTL = time.Second * 30
)

// providerHealth tracks the health of a registered provider.
type providerHealth struct {
	name     string
	healthy  atomic.Bool
	lastUsed atomic.Time
}

// cachedQuote represents a cached price quote.
type cachedQuote struct {
	quote     *shared.PriceQuote
	fetchedAt time.Time
}

// ManagerConfig represents the configuration for the price data manager.
type ManagerConfig struct {
	// Providers are the price data providers, in failover order.
	Providers []Provider
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Manager serves price data, failing over across its providers and caching
// recent quotes.
type Manager struct {
	cfg        *ManagerConfig
	health     []*providerHealth
	cacheMtx   sync.RWMutex
	quoteCache map[string]*cachedQuote
}

// Ensure the Manager implements the PriceProvider interface.
var _ shared.PriceProvider = (*Manager)(nil)

// NewManager initializes a new price data manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no price data providers configured")
	}

	health := make([]*providerHealth, len(cfg.Providers))
	for idx := range cfg.Providers {
		health[idx] = &providerHealth{name: cfg.Providers[idx].Name()}
		health[idx].healthy.Store(true)
	}

	return &Manager{
		cfg:        cfg,
		health:     health,
		quoteCache: make(map[string]*cachedQuote),
	}, nil
}

// cachedPrice fetches a fresh cached quote for the provided pair.
func (m *Manager) cachedPrice(pair string) (*shared.PriceQuote, bool) {
	m.cacheMtx.RLock()
	defer m.cacheMtx.RUnlock()

	entry, ok := m.quoteCache[pair]
	if !ok || time.Since(entry.fetchedAt) > quoteCacheTTL {
		return nil, false
	}

	quote := *entry.quote
	return &quote, true
}

// CurrentPrice fetches the current quote for the provided pair, served from
// the cache when fresh.
func (m *Manager) CurrentPrice(ctx context.Context, pair string) (*shared.PriceQuote, error) {
	quote, ok := m.cachedPrice(pair)
	if ok {
		return quote, nil
	}

	for idx, provider := range m.cfg.Providers {
		m.health[idx].lastUsed.Store(time.Now().UTC())

		quote, err := provider.FetchPrice(ctx, pair)
		if err != nil {
			m.health[idx].healthy.Store(false)
			m.cfg.Logger.Warn().Msgf("fetching current price for %s from %s: %v",
				pair, provider.Name(), err)
			continue
		}

		m.health[idx].healthy.Store(true)

		m.cacheMtx.Lock()
		m.quoteCache[pair] = &cachedQuote{quote: quote, fetchedAt: time.Now().UTC()}
		m.cacheMtx.Unlock()

		cpy := *quote
		return &cpy, nil
	}

	return nil, fmt.Errorf("%w: all providers failed fetching current price for %s",
		shared.ErrProviderUnavailable, pair)
}

// HistoricalBars fetches the most recent bars for the provided pair.
func (m *Manager) HistoricalBars(ctx context.Context, pair string, timeframe shared.Timeframe, count int) ([]shared.PriceBar, error) {
	for idx, provider := range m.cfg.Providers {
		m.health[idx].lastUsed.Store(time.Now().UTC())

		bars, err := provider.FetchHistorical(ctx, pair, timeframe, count)
		if err != nil {
			m.health[idx].healthy.Store(false)
			m.cfg.Logger.Warn().Msgf("fetching historical bars for %s from %s: %v",
				pair, provider.Name(), err)
			continue
		}

		m.health[idx].healthy.Store(true)
		return bars, nil
	}

	return nil, fmt.Errorf("%w: all providers failed fetching historical bars for %s",
		shared.ErrProviderUnavailable, pair)
}

// HistoricalRange fetches bars for the provided pair and window from the
// first provider able to serve ranged history.
func (m *Manager) HistoricalRange(ctx context.Context, pair string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]shared.PriceBar, error) {
	for idx, provider := range m.cfg.Providers {
		ranged, ok := provider.(RangeProvider)
		if !ok {
			continue
		}

		m.health[idx].lastUsed.Store(time.Now().UTC())

		bars, err := ranged.FetchHistoricalRange(ctx, pair, timeframe, start, end)
		if err != nil {
			m.health[idx].healthy.Store(false)
			m.cfg.Logger.Warn().Msgf("fetching bar range for %s from %s: %v",
				pair, provider.Name(), err)
			continue
		}

		m.health[idx].healthy.Store(true)
		return bars, nil
	}

	return nil, fmt.Errorf("%w: no provider could serve a bar range for %s",
		shared.ErrProviderUnavailable, pair)
}

// ProviderStatuses describes the health of all registered providers.
func (m *Manager) ProviderStatuses() []ProviderStatus {
	statuses := make([]ProviderStatus, len(m.health))
	for idx := range m.health {
		statuses[idx] = ProviderStatus{
			Name:     m.health[idx].name,
			Healthy:  m.health[idx].healthy.Load(),
			LastUsed: m.health[idx].lastUsed.Load(),
		}
	}

	return statuses
}
