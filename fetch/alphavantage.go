package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/halver/copysig/shared"
	"github.com/tidwall/gjson"
)

const (
	alphaVantageName    = "alphavantage"
	alphaVantageBaseURL = "https://www.alphavantage.co"
)

// AlphaVantageConfig represents the configuration for the Alpha Vantage client.
type AlphaVantageConfig struct {
	// APIKey is the Alpha Vantage API Key.
	APIKey string
	// BaseURL is the Alpha Vantage API base url.
	BaseURL string
}

// AlphaVantageClient represents the Alpha Vantage API client.
type AlphaVantageClient struct {
	cfg   *AlphaVantageConfig
	httpc http.Client
}

// Ensure the AlphaVantageClient implements the Provider interface.
var _ Provider = (*AlphaVantageClient)(nil)

// NewAlphaVantageClient instantiates a new Alpha Vantage client.
func NewAlphaVantageClient(cfg *AlphaVantageConfig) *AlphaVantageClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = alphaVantageBaseURL
	}

	return &AlphaVantageClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
	}
}

// Name returns the name of the provider.
func (c *AlphaVantageClient) Name() string {
	return alphaVantageName
}

// formURL creates full urls including parameters for the api. The builder is
// local so concurrent fetches never share url state.
func (c *AlphaVantageClient) formURL(params string) string {
	var buf strings.Builder
	buf.Grow(len(c.cfg.BaseURL) + len(params) + 8)
	buf.WriteString(c.cfg.BaseURL)
	buf.WriteString("/query")
	buf.WriteString("?")
	buf.WriteString(params)

	return buf.String()
}

// splitPair splits the provided pair into its base and quote currencies.
func splitPair(pair string) (string, string, error) {
	if len(pair) != 6 {
		return "", "", fmt.Errorf("unexpected pair format: %s", pair)
	}

	return pair[:3], pair[3:], nil
}

// get issues a request for the provided url and returns the response body.
func (c *AlphaVantageClient) get(ctx context.Context, formedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}

// FetchPrice fetches the current quote for the provided pair.
func (c *AlphaVantageClient) FetchPrice(ctx context.Context, pair string) (*shared.PriceQuote, error) {
	base, quote, err := splitPair(pair)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("function", "CURRENCY_EXCHANGE_RATE")
	params.Add("from_currency", base)
	params.Add("to_currency", quote)
	params.Add("apikey", c.cfg.APIKey)

	body, err := c.get(ctx, c.formURL(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching current price for %s: %w", pair, err)
	}

	rate := gjson.GetBytes(body, "Realtime Currency Exchange Rate.5\\. Exchange Rate")
	if !rate.Exists() {
		return nil, fmt.Errorf("%w: no exchange rate for %s", shared.ErrProviderUnavailable, pair)
	}

	return &shared.PriceQuote{
		Pair:      pair,
		Price:     rate.Float(),
		Timestamp: time.Now().UTC(),
	}, nil
}

// FetchHistorical fetches the most recent bars for the provided pair.
func (c *AlphaVantageClient) FetchHistorical(ctx context.Context, pair string, timeframe shared.Timeframe, count int) ([]shared.PriceBar, error) {
	base, quote, err := splitPair(pair)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("from_symbol", base)
	params.Add("to_symbol", quote)
	params.Add("apikey", c.cfg.APIKey)

	var seriesKey string
	switch timeframe {
	case shared.OneHour:
		params.Add("function", "FX_INTRADAY")
		params.Add("interval", "60min")
		seriesKey = "Time Series FX (60min)"
	case shared.OneDay:
		params.Add("function", "FX_DAILY")
		seriesKey = "Time Series FX (Daily)"
	default:
		return nil, fmt.Errorf("unknown timeframe provided: %s", timeframe.String())
	}

	body, err := c.get(ctx, c.formURL(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching historical bars for %s: %w", pair, err)
	}

	series := gjson.GetBytes(body, gjsonKey(seriesKey)).Map()
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no %s series for %s", shared.ErrProviderUnavailable, timeframe.String(), pair)
	}

	bars := make([]shared.PriceBar, 0, len(series))
	for date, entry := range series {
		dt, err := parseSeriesDate(date, timeframe)
		if err != nil {
			return nil, fmt.Errorf("parsing bar date: %w", err)
		}

		bars = append(bars, shared.PriceBar{
			Open:      entry.Get(gjsonKey("1. open")).Float(),
			High:      entry.Get(gjsonKey("2. high")).Float(),
			Low:       entry.Get(gjsonKey("3. low")).Float(),
			Close:     entry.Get(gjsonKey("4. close")).Float(),
			Date:      dt,
			Pair:      pair,
			Timeframe: timeframe,
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	if count > 0 && len(bars) > count {
		bars = bars[len(bars)-count:]
	}

	return bars, nil
}

// gjsonKey escapes dots in the provided key so gjson treats it as a single
// path element.
func gjsonKey(key string) string {
	escaped := make([]byte, 0, len(key))
	for idx := 0; idx < len(key); idx++ {
		if key[idx] == '.' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, key[idx])
	}

	return string(escaped)
}

// parseSeriesDate parses a series timestamp for the provided timeframe.
func parseSeriesDate(date string, timeframe shared.Timeframe) (time.Time, error) {
	layout := shared.DateLayout
	if timeframe == shared.OneDay {
		layout = "2006-01-02"
	}

	return time.Parse(layout, date)
}
