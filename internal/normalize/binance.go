package normalize

import (
	"encoding/json"
	"strings"

	"github.com/Alias1177/volscan/models"
)

const binanceKlineFields = 9

// BinanceKlines normalizes a /fapi/v1/klines response. Binance returns bars oldest-first.
func BinanceKlines(symbol string, body []byte) ([]models.Candle, error) {
	const source = "binance klines"

	rows, err := splitEntries(source, body)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)
	candles := make([]models.Candle, 0, len(rows))
	for i, f := range rows {
		if len(f) < binanceKlineFields {
			return nil, malformed(source, i, "got %d fields, need %d", len(f), binanceKlineFields)
		}

		c := models.Candle{Symbol: symbol}
		var err error
		if c.OpenTime, err = parseInteger(f[0]); err != nil {
			return nil, malformed(source, i, "open_time: %v", err)
		}
		if c.Open, err = parseNumber(f[1]); err != nil {
			return nil, malformed(source, i, "open: %v", err)
		}
		if c.High, err = parseNumber(f[2]); err != nil {
			return nil, malformed(source, i, "high: %v", err)
		}
		if c.Low, err = parseNumber(f[3]); err != nil {
			return nil, malformed(source, i, "low: %v", err)
		}
		if c.Close, err = parseNumber(f[4]); err != nil {
			return nil, malformed(source, i, "close: %v", err)
		}
		if c.Volume, err = parseNumber(f[5]); err != nil {
			return nil, malformed(source, i, "volume: %v", err)
		}
		if c.CloseTime, err = parseInteger(f[6]); err != nil {
			return nil, malformed(source, i, "close_time: %v", err)
		}
		if c.QuoteVolume, err = parseNumber(f[7]); err != nil {
			return nil, malformed(source, i, "quote_volume: %v", err)
		}
		if c.Trades, err = parseInteger(f[8]); err != nil {
			return nil, malformed(source, i, "trades: %v", err)
		}
		candles = append(candles, c)
	}

	reverse(candles)
	return recentFirst(source, candles)
}

type binanceTicker struct {
	Symbol             string `json:"symbol"`
	PriceChange        number `json:"priceChange"`
	PriceChangePercent number `json:"priceChangePercent"`
	LastPrice          number `json:"lastPrice"`
	HighPrice          number `json:"highPrice"`
	LowPrice           number `json:"lowPrice"`
	Volume             number `json:"volume"`
	QuoteVolume        number `json:"quoteVolume"`
	Count              number `json:"count"`
	OpenPrice          number `json:"openPrice"`
	PrevClosePrice     number `json:"prevClosePrice"`
}

func (t binanceTicker) model(fallback string) models.Ticker24h {
	symbol := t.Symbol
	if symbol == "" {
		symbol = strings.ToUpper(fallback)
	}
	return models.Ticker24h{
		Symbol:             symbol,
		PriceChange:        float64(t.PriceChange),
		PriceChangePercent: float64(t.PriceChangePercent),
		LastPrice:          float64(t.LastPrice),
		HighPrice:          float64(t.HighPrice),
		LowPrice:           float64(t.LowPrice),
		Volume:             float64(t.Volume),
		QuoteVolume:        float64(t.QuoteVolume),
		Count:              int64(t.Count),
		OpenPrice:          float64(t.OpenPrice),
		PrevClosePrice:     float64(t.PrevClosePrice),
	}
}

// BinanceTicker24h normalizes a single-symbol /fapi/v1/ticker/24hr response
func BinanceTicker24h(symbol string, body []byte) (*models.Ticker24h, error) {
	var raw binanceTicker
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed("binance ticker", -1, "%v", err)
	}
	t := raw.model(symbol)
	return &t, nil
}

// BinanceFundingRate normalizes a /fapi/v1/premiumIndex response
func BinanceFundingRate(symbol string, body []byte) (*models.FundingRate, error) {
	var raw struct {
		Symbol          string `json:"symbol"`
		LastFundingRate number `json:"lastFundingRate"`
		NextFundingTime number `json:"nextFundingTime"`
		MarkPrice       number `json:"markPrice"`
		IndexPrice      number `json:"indexPrice"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed("binance funding rate", -1, "%v", err)
	}
	return &models.FundingRate{
		Symbol:          orUpper(raw.Symbol, symbol),
		LastFundingRate: float64(raw.LastFundingRate),
		NextFundingTime: int64(raw.NextFundingTime),
		MarkPrice:       float64(raw.MarkPrice),
		IndexPrice:      float64(raw.IndexPrice),
	}, nil
}

// BinanceOpenInterest normalizes a /fapi/v1/openInterest response
func BinanceOpenInterest(symbol string, body []byte) (*models.OpenInterest, error) {
	var raw struct {
		Symbol       string `json:"symbol"`
		OpenInterest number `json:"openInterest"`
		Time         number `json:"time"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed("binance open interest", -1, "%v", err)
	}
	return &models.OpenInterest{
		Symbol:       orUpper(raw.Symbol, symbol),
		OpenInterest: float64(raw.OpenInterest),
		Timestamp:    int64(raw.Time),
	}, nil
}

// BinanceCurrentPrice normalizes a /fapi/v1/ticker/price response
func BinanceCurrentPrice(symbol string, body []byte) (*models.CurrentPrice, error) {
	var raw struct {
		Symbol string `json:"symbol"`
		Price  number `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed("binance price", -1, "%v", err)
	}
	return &models.CurrentPrice{Symbol: orUpper(raw.Symbol, symbol), Price: float64(raw.Price)}, nil
}

// BinanceOrderBook normalizes a /fapi/v1/depth response
func BinanceOrderBook(symbol string, body []byte) (*models.OrderBook, error) {
	const source = "binance depth"

	var raw struct {
		Symbol       string              `json:"symbol"`
		LastUpdateID number              `json:"lastUpdateId"`
		Bids         [][]json.RawMessage `json:"bids"`
		Asks         [][]json.RawMessage `json:"asks"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed(source, -1, "%v", err)
	}
	return buildOrderBook(source, orUpper(raw.Symbol, symbol), int64(raw.LastUpdateID), raw.Bids, raw.Asks)
}

func buildOrderBook(source, symbol string, updateID int64, bids, asks [][]json.RawMessage) (*models.OrderBook, error) {
	bidLevels, bidTotal, err := parseLevels(source, "bid", bids)
	if err != nil {
		return nil, err
	}
	askLevels, askTotal, err := parseLevels(source, "ask", asks)
	if err != nil {
		return nil, err
	}
	return &models.OrderBook{
		Symbol:       symbol,
		LastUpdateID: updateID,
		Bids:         bidLevels,
		Asks:         askLevels,
		BidTotalQty:  bidTotal,
		AskTotalQty:  askTotal,
	}, nil
}

// BinanceSymbols filters a /fapi/v1/exchangeInfo response.
// Empty filter fields match everything.
func BinanceSymbols(body []byte, contractType, status string, quotes []string) ([]string, error) {
	var raw struct {
		Symbols []struct {
			Symbol       string `json:"symbol"`
			ContractType string `json:"contractType"`
			Status       string `json:"status"`
			QuoteAsset   string `json:"quoteAsset"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, malformed("binance exchange info", -1, "%v", err)
	}

	quoteSet := quoteFilter(quotes)
	var symbols []string
	for _, item := range raw.Symbols {
		if contractType != "" && item.ContractType != contractType {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		if quoteSet != nil && !quoteSet[strings.ToUpper(item.QuoteAsset)] {
			continue
		}
		if item.Symbol != "" {
			symbols = append(symbols, item.Symbol)
		}
	}
	return symbols, nil
}

// BinanceTickers normalizes the all-symbol /fapi/v1/ticker/24hr list.
// Entries without a symbol, outside the quote filter or with unparseable numbers are skipped.
func BinanceTickers(body []byte, quotes []string) ([]models.Ticker24h, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, malformed("binance tickers", -1, "expected an array: %v", err)
	}

	quoteSet := quoteFilter(quotes)
	tickers := make([]models.Ticker24h, 0, len(entries))
	for _, entry := range entries {
		var raw binanceTicker
		if err := json.Unmarshal(entry, &raw); err != nil || raw.Symbol == "" {
			continue
		}
		symbol := strings.ToUpper(raw.Symbol)
		if quoteSet != nil && !hasQuoteSuffix(symbol, quoteSet) {
			continue
		}
		raw.Symbol = symbol
		tickers = append(tickers, raw.model(symbol))
	}
	return tickers, nil
}

// ParseQuotes turns "USDT,busd" into its uppercase parts; empty or ALL means no filter.
func ParseQuotes(text string) []string {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" || text == "ALL" {
		return nil
	}
	var quotes []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			quotes = append(quotes, part)
		}
	}
	return quotes
}

func quoteFilter(quotes []string) map[string]bool {
	if len(quotes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		set[strings.ToUpper(q)] = true
	}
	return set
}

func hasQuoteSuffix(symbol string, quotes map[string]bool) bool {
	for q := range quotes {
		if strings.HasSuffix(symbol, q) {
			return true
		}
	}
	return false
}

func orUpper(value, fallback string) string {
	if value != "" {
		return value
	}
	return strings.ToUpper(fallback)
}
