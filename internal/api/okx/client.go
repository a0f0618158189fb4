package okx

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

// DefaultBaseURL is the OKX v5 REST endpoint
const DefaultBaseURL = "https://www.okx.com"

// Client is the OKX v5 API client
type Client struct {
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new OKX client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	MaxConcurrent   int
	MinInterval     time.Duration
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new OKX API client
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
		logger: log.With().Str("component", "okx_client").Logger(),
	}
}

// Name identifies the exchange in storage paths
func (c *Client) Name() string { return "okx" }

func instParams(instID string) url.Values {
	return url.Values{"instId": {instID}}
}

// Klines fetches the latest limit candles, most recent first
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	params := instParams(symbol)
	params.Set("bar", normalize.OKXInterval(interval))
	params.Set("limit", strconv.Itoa(limit))

	c.logger.Debug().Str("symbol", symbol).Str("bar", params.Get("bar")).Int("limit", limit).Msg("Fetching klines")

	body, err := c.httpClient.Get(ctx, "/api/v5/market/candles", params)
	if err != nil {
		return nil, fmt.Errorf("okx klines %s: %w", symbol, err)
	}

	candles, err := normalize.OKXKlines(symbol, interval, body)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Malformed klines")
		return nil, err
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched klines")
	return candles, nil
}

// Ticker24h fetches rolling 24 hour statistics
func (c *Client) Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error) {
	body, err := c.httpClient.Get(ctx, "/api/v5/market/ticker", instParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("okx ticker %s: %w", symbol, err)
	}
	return normalize.OKXTicker24h(symbol, body)
}

// FundingRate fetches the current funding rate of a swap
func (c *Client) FundingRate(ctx context.Context, symbol string) (*models.FundingRate, error) {
	body, err := c.httpClient.Get(ctx, "/api/v5/public/funding-rate", instParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("okx funding rate %s: %w", symbol, err)
	}
	return normalize.OKXFundingRate(symbol, body)
}

// OpenInterest fetches the current open interest of a contract
func (c *Client) OpenInterest(ctx context.Context, symbol string) (*models.OpenInterest, error) {
	body, err := c.httpClient.Get(ctx, "/api/v5/public/open-interest", instParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("okx open interest %s: %w", symbol, err)
	}
	return normalize.OKXOpenInterest(symbol, body)
}

// OrderBook fetches depth levels of each side
func (c *Client) OrderBook(ctx context.Context, symbol string, depth int) (*models.OrderBook, error) {
	params := instParams(symbol)
	params.Set("sz", strconv.Itoa(depth))

	body, err := c.httpClient.Get(ctx, "/api/v5/market/books", params)
	if err != nil {
		return nil, fmt.Errorf("okx books %s: %w", symbol, err)
	}
	return normalize.OKXOrderBook(symbol, body)
}

// CurrentPrice fetches the last traded price
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (*models.CurrentPrice, error) {
	body, err := c.httpClient.Get(ctx, "/api/v5/market/ticker", instParams(symbol))
	if err != nil {
		return nil, fmt.Errorf("okx price %s: %w", symbol, err)
	}
	return normalize.OKXCurrentPrice(symbol, body)
}

// Symbols lists live instruments of filter.InstType quoted in filter.Quote
func (c *Client) Symbols(ctx context.Context, filter models.SymbolFilter) ([]string, error) {
	params := url.Values{"instType": {strings.ToUpper(instTypeOrDefault(filter.InstType))}}
	body, err := c.httpClient.Get(ctx, "/api/v5/public/instruments", params)
	if err != nil {
		return nil, fmt.Errorf("okx instruments: %w", err)
	}
	return normalize.OKXSymbols(body, "live", normalize.ParseQuotes(filter.Quote))
}

// Tickers fetches 24 hour statistics of every instrument of filter.InstType
func (c *Client) Tickers(ctx context.Context, filter models.SymbolFilter) ([]models.Ticker24h, error) {
	params := url.Values{"instType": {strings.ToUpper(instTypeOrDefault(filter.InstType))}}
	body, err := c.httpClient.Get(ctx, "/api/v5/market/tickers", params)
	if err != nil {
		return nil, fmt.Errorf("okx tickers: %w", err)
	}
	return normalize.OKXTickers(body, normalize.ParseQuotes(filter.Quote))
}

func instTypeOrDefault(instType string) string {
	if instType == "" {
		return "SWAP"
	}
	return instType
}
