package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/halver/copysig/shared"
	"github.com/tidwall/gjson"
)

const (
	binanceName    = "binance"
	binanceBaseURL = "https://api.binance.com"
)

// BinanceConfig represents the configuration for the Binance client.
type BinanceConfig struct {
	// BaseURL is the Binance API base url.
	BaseURL string
}

// BinanceClient represents the Binance API client. Market data endpoints
// need no api key.
type BinanceClient struct {
	cfg   *BinanceConfig
	httpc http.Client
}

// Ensure the BinanceClient implements the Provider interface.
var _ Provider = (*BinanceClient)(nil)

// NewBinanceClient instantiates a new Binance client.
func NewBinanceClient(cfg *BinanceConfig) *BinanceClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = binanceBaseURL
	}

	return &BinanceClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
	}
}

// Name returns the name of the provider.
func (c *BinanceClient) Name() string {
	return binanceName
}

// formURL creates full urls including parameters for the api. The builder is
// local so concurrent fetches never share url state.
func (c *BinanceClient) formURL(path string, params string) string {
	var buf strings.Builder
	buf.Grow(len(c.cfg.BaseURL) + len(path) + len(params) + 1)
	buf.WriteString(c.cfg.BaseURL)
	buf.WriteString(path)
	buf.WriteString("?")
	buf.WriteString(params)

	return buf.String()
}

// binanceSymbol converts the provided pair to its Binance spot symbol.
// Binance quotes dollar pairs against USDT.
func binanceSymbol(pair string) string {
	if strings.HasSuffix(pair, "USD") {
		return pair + "T"
	}

	return pair
}

// get issues a request for the provided url and returns the response body.
func (c *BinanceClient) get(ctx context.Context, formedURL string) ([]byte, error) {
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
func (c *BinanceClient) FetchPrice(ctx context.Context, pair string) (*shared.PriceQuote, error) {
	const tickerPath = "/api/v3/ticker/24hr"

	params := url.Values{}
	params.Add("symbol", binanceSymbol(pair))

	body, err := c.get(ctx, c.formURL(tickerPath, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching current price for %s: %w", pair, err)
	}

	lastPrice := gjson.GetBytes(body, "lastPrice")
	if !lastPrice.Exists() {
		return nil, fmt.Errorf("%w: no ticker for %s", shared.ErrProviderUnavailable, pair)
	}

	return &shared.PriceQuote{
		Pair:          pair,
		Price:         lastPrice.Float(),
		Change:        gjson.GetBytes(body, "priceChange").Float(),
		ChangePercent: gjson.GetBytes(body, "priceChangePercent").Float(),
		Volume:        gjson.GetBytes(body, "volume").Float(),
		Timestamp:     time.Now().UTC(),
	}, nil
}

// parseKlines parses price bars from the provided kline entries.
func parseKlines(data []gjson.Result, pair string, timeframe shared.Timeframe) ([]shared.PriceBar, error) {
	bars := make([]shared.PriceBar, len(data))

	for idx := range data {
		fields := data[idx].Array()
		if len(fields) < 6 {
			return nil, fmt.Errorf("unexpected kline with %d fields", len(fields))
		}

		open, err := strconv.ParseFloat(fields[1].String(), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing kline open: %w", err)
		}

		high, err := strconv.ParseFloat(fields[2].String(), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing kline high: %w", err)
		}

		low, err := strconv.ParseFloat(fields[3].String(), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing kline low: %w", err)
		}

		closePrice, err := strconv.ParseFloat(fields[4].String(), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing kline close: %w", err)
		}

		volume, err := strconv.ParseFloat(fields[5].String(), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing kline volume: %w", err)
		}

		bars[idx] = shared.PriceBar{
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			Date:      time.UnixMilli(fields[0].Int()).UTC(),
			Pair:      pair,
			Timeframe: timeframe,
		}
	}

	return bars, nil
}

// FetchHistorical fetches the most recent bars for the provided pair.
func (c *BinanceClient) FetchHistorical(ctx context.Context, pair string, timeframe shared.Timeframe, count int) ([]shared.PriceBar, error) {
	const klinesPath = "/api/v3/klines"

	params := url.Values{}
	params.Add("symbol", binanceSymbol(pair))
	params.Add("interval", timeframe.String())
	if count > 0 {
		params.Add("limit", strconv.Itoa(count))
	}

	body, err := c.get(ctx, c.formURL(klinesPath, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching historical bars for %s: %w", pair, err)
	}

	data := gjson.ParseBytes(body).Array()

	return parseKlines(data, pair, timeframe)
}
