package models

import "context"

// MarketClient fetches one symbol's market data from an exchange and returns it normalized
type MarketClient interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	Ticker24h(ctx context.Context, symbol string) (*Ticker24h, error)
	FundingRate(ctx context.Context, symbol string) (*FundingRate, error)
	OpenInterest(ctx context.Context, symbol string) (*OpenInterest, error)
	OrderBook(ctx context.Context, symbol string, depth int) (*OrderBook, error)
	CurrentPrice(ctx context.Context, symbol string) (*CurrentPrice, error)
}

// SymbolFilter narrows an exchange's instrument listing
type SymbolFilter struct {
	Quote        string
	ContractType string
	InstType     string
}

// MarketLister lists instruments and market-wide 24h statistics
type MarketLister interface {
	Name() string
	Symbols(ctx context.Context, filter SymbolFilter) ([]string, error)
	Tickers(ctx context.Context, filter SymbolFilter) ([]Ticker24h, error)
}

// Exchange is a full exchange client
type Exchange interface {
	MarketClient
	MarketLister
}
