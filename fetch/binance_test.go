package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/halver/copysig/shared"
	"github.com/peterldowns/testy/assert"
)

func TestBinanceClient(t *testing.T) {
	const tickerResponse = `{
		"symbol": "BTCUSDT",
		"lastPrice": "43250.10",
		"priceChange": "120.50",
		"priceChangePercent": "0.28",
		"volume": "18000.5"
	}`

	const klinesResponse = `[
		[1706792400000, "43100.0", "43300.0", "43050.0", "43200.0", "5000.1", 1706795999999],
		[1706796000000, "43200.0", "43400.0", "43150.0", "43250.1", "4800.2", 1706799599999]
	]`

	var tickerSymbol, klineInterval string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/ticker/24hr":
			tickerSymbol = r.URL.Query().Get("symbol")
			w.Write([]byte(tickerResponse))
		case "/api/v3/klines":
			klineInterval = r.URL.Query().Get("interval")
			w.Write([]byte(klinesResponse))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewBinanceClient(&BinanceConfig{BaseURL: server.URL})
	assert.Equal(t, client.Name(), "binance")

	// Ensure current quotes are fetched against the USDT symbol.
	quote, err := client.FetchPrice(context.Background(), "BTCUSD")
	assert.NoError(t, err)
	assert.Equal(t, tickerSymbol, "BTCUSDT")
	assert.Equal(t, quote.Pair, "BTCUSD")
	assert.Equal(t, quote.Price, 43250.10)
	assert.Equal(t, quote.ChangePercent, 0.28)

	// Ensure klines are parsed into bars.
	bars, err := client.FetchHistorical(context.Background(), "BTCUSD", shared.OneHour, 2)
	assert.NoError(t, err)
	assert.Equal(t, klineInterval, "1h")
	assert.Equal(t, len(bars), 2)
	assert.Equal(t, bars[0].Open, 43100.0)
	assert.Equal(t, bars[1].Close, 43250.1)
	assert.Equal(t, bars[1].Volume, 4800.2)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
	assert.Equal(t, bars[0].Date.Year(), 2024)
}

func TestBinanceClientConcurrentFetches(t *testing.T) {
	const tickerResponse = `{"symbol": "BTCUSDT", "lastPrice": "43250.10"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Ticker requests arriving concurrently must each carry an intact url.
		if r.URL.Path != "/api/v3/ticker/24hr" || r.URL.Query().Get("symbol") != "BTCUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Write([]byte(tickerResponse))
	}))
	defer server.Close()

	client := NewBinanceClient(&BinanceConfig{BaseURL: server.URL})

	const fetchers = 8

	fetchErrs := make(chan error, fetchers)

	var wg sync.WaitGroup
	wg.Add(fetchers)
	for range fetchers {
		go func() {
			defer wg.Done()

			for range 20 {
				quote, err := client.FetchPrice(context.Background(), "BTCUSD")
				if err != nil {
					fetchErrs <- err
					return
				}
				if quote.Price != 43250.10 {
					fetchErrs <- fmt.Errorf("unexpected quote price: %v", quote.Price)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(fetchErrs)

	for err := range fetchErrs {
		assert.NoError(t, err)
	}
}

func TestBinanceClientMalformedKlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1706792400000, "43100.0"]]`))
	}))
	defer server.Close()

	client := NewBinanceClient(&BinanceConfig{BaseURL: server.URL})

	_, err := client.FetchHistorical(context.Background(), "BTCUSD", shared.OneHour, 1)
	assert.Error(t, err)
}

func TestBinanceSymbol(t *testing.T) {
	assert.Equal(t, binanceSymbol("BTCUSD"), "BTCUSDT")
	assert.Equal(t, binanceSymbol("ETHUSD"), "ETHUSDT")
	assert.Equal(t, binanceSymbol("BTCUSDT"), "BTCUSDT")
}
