package api

import (
	"fmt"
	"strings"

	"github.com/Alias1177/volscan/internal/api/binance"
	"github.com/Alias1177/volscan/internal/api/okx"
	"github.com/Alias1177/volscan/internal/config"
	"github.com/Alias1177/volscan/models"
)

// Supported exchanges
const (
	Binance = "binance"
	OKX     = "okx"
)

// NewExchange builds the client of the named exchange from the configuration
func NewExchange(name string, cfg *config.Config) (models.Exchange, error) {
	switch strings.ToLower(name) {
	case Binance:
		return binance.NewClient(binance.ClientOptions{
			BaseURL:         cfg.BinanceBaseURL,
			RequestTimeout:  cfg.RequestTimeout,
			MaxConcurrent:   cfg.MaxConcurrent,
			MinInterval:     cfg.MinInterval,
			MaxRetries:      cfg.MaxRetries,
			MaxRetryTimeout: cfg.MaxRetryTimeout,
		}), nil
	case OKX:
		return okx.NewClient(okx.ClientOptions{
			BaseURL:         cfg.OKXBaseURL,
			RequestTimeout:  cfg.RequestTimeout,
			MaxConcurrent:   cfg.MaxConcurrent,
			MinInterval:     cfg.MinInterval,
			MaxRetries:      cfg.MaxRetries,
			MaxRetryTimeout: cfg.MaxRetryTimeout,
		}), nil
	}
	return nil, fmt.Errorf("unsupported exchange %q, use %s or %s", name, Binance, OKX)
}

// DetectExchange guesses the exchange from the symbol format: OKX swaps look like BTC-USDT-SWAP
func DetectExchange(symbol string) string {
	if strings.Contains(symbol, "-") && strings.Contains(strings.ToUpper(symbol), "SWAP") {
		return OKX
	}
	return Binance
}
