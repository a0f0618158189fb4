package binance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/volscan/internal/normalize"
	httpClient "github.com/Alias1177/volscan/internal/platform/http"
	"github.com/Alias1177/volscan/models"
)

// DefaultBaseURL is the USDⓈ-M futures REST endpoint
const DefaultBaseURL = "https://fapi.binance.com"

// Client is the Binance USDⓈ-M futures API client
type Client struct {
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	MaxConcurrent   int
	MinInterval     time.Duration
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Binance API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			BaseURL:         strings.TrimRight(options.BaseURL, "/"),
			Timeout:         options.RequestTimeout,
			MaxConcurrent:   options.MaxConcurrent,
			MinInterval:     options.MinInterval,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// Name identifies the exchange in storage paths
func (c *Client) Name() string { return "binance" }

func symbolParams(symbol string) url.Values {
	return url.Values{"symbol": {strings.ToUpper(symbol)}}
}

// Klines fetches the latest limit candles, most recent first
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	params := symbolParams(symbol)
	params.Set("interval", normalize.BinanceInterval(interval))
	params.Set("limit", strconv.Itoa(limit))

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("limit", limit).Msg("Fetching klines")

	body, err := c.httpClient.Get(ctx, "/fapi/v1/klines", params)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}

	candles, err := normalize.BinanceKlines(symbol, body)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Malformed klines")
		return nil, err
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched klines")
	return candles, nil
}

// Ticker24h fetches rolling 24 hour statistics
func (c *Client) Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error) {
	body, err := c.httpClient.Get(ctx, "/fapi/v1/ticker/24hr", symbolParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("binance ticker %s: %w", symbol, err)
	}
	return normalize.BinanceTicker24h(symbol, body)
}

// FundingRate fetches the premium index with the latest funding rate
func (c *Client) FundingRate(ctx context.Context, symbol string) (*models.FundingRate, error) {
	body, err := c.httpClient.Get(ctx, "/fapi/v1/premiumIndex", symbolParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("binance funding rate %s: %w", symbol, err)
	}
	return normalize.BinanceFundingRate(symbol, body)
}

// OpenInterest fetches the current open interest
func (c *Client) OpenInterest(ctx context.Context, symbol string) (*models.OpenInterest, error) {
	body, err := c.httpClient.Get(ctx, "/fapi/v1/openInterest", symbolParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("binance open interest %s: %w", symbol, err)
	}
	return normalize.BinanceOpenInterest(symbol, body)
}

// OrderBook fetches depth levels of each side
func (c *Client) OrderBook(ctx context.Context, symbol string, depth int) (*models.OrderBook, error) {
	params := symbolParams(symbol)
	params.Set("limit", strconv.Itoa(depth))

	body, err := c.httpClient.Get(ctx, "/fapi/v1/depth", params)
	if err != nil {
		return nil, fmt.Errorf("binance depth %s: %w", symbol, err)
	}
	return normalize.BinanceOrderBook(symbol, body)
}

// CurrentPrice fetches the last traded price
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (*models.CurrentPrice, error) {
	body, err := c.httpClient.Get(ctx, "/fapi/v1/ticker/price", symbolParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("binance price %s: %w", symbol, err)
	}
	return normalize.BinanceCurrentPrice(symbol, body)
}

// Symbols lists trading contracts of filter.ContractType quoted in filter.Quote
func (c *Client) Symbols(ctx context.Context, filter models.SymbolFilter) ([]string, error) {
	body, err := c.httpClient.Get(ctx, "/fapi/v1/exchangeInfo", nil)
	if err != nil {
		return nil, fmt.Errorf("binance exchange info: %w", err)
	}
	return normalize.BinanceSymbols(body, filter.ContractType, "TRADING", normalize.ParseQuotes(filter.Quote))
}

// Tickers fetches 24 hour statistics of every contract quoted in filter.Quote
func (c *Client) Tickers(ctx context.Context, filter models.SymbolFilter) ([]models.Ticker24h, error) {
	body, err := c.httpClient.Get(ctx, "/fapi/v1/ticker/24hr", nil)
	if err != nil {
		return nil, fmt.Errorf("binance tickers: %w", err)
	}
	return normalize.BinanceTickers(body, normalize.ParseQuotes(filter.Quote))
}
