package normalize

import (
	"encoding/json"
	"strings"

	"github.com/Alias1177/volscan/models"
)

const okxKlineFields = 8

type okxEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// okxData unwraps the {code, msg, data} envelope
func okxData(source string, body []byte) (json.RawMessage, error) {
	var env okxEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, malformed(source, -1, "%v", err)
	}
	if env.Code != "0" {
		return nil, &APIError{Source: source, Code: env.Code, Msg: env.Msg}
	}
	return env.Data, nil
}

// okxFirst decodes the first element of a single-object endpoint's data array
func okxFirst(source string, body []byte, v any) error {
	data, err := okxData(source, body)
	if err != nil {
		return err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return malformed(source, -1, "data is not an array: %v", err)
	}
	if len(items) == 0 {
		return malformed(source, -1, "empty data; check the instrument id is a contract")
	}
	if err := json.Unmarshal(items[0], v); err != nil {
		return malformed(source, 0, "%v", err)
	}
	return nil
}

// OKXKlines normalizes a /api/v5/market/candles response. OKX returns bars newest-first.
// OKX has no close time, so it is derived from the interval when known.
func OKXKlines(symbol, interval string, body []byte) ([]models.Candle, error) {
	const source = "okx klines"

	data, err := okxData(source, body)
	if err != nil {
		return nil, err
	}
	rows, err := splitEntries(source, data)
	if err != nil {
		return nil, err
	}

	var span int64
	if d, ok := models.IntervalDuration(OKXInterval(interval)); ok {
		span = d.Milliseconds()
	}

	symbol = strings.ToUpper(symbol)
	candles := make([]models.Candle, 0, len(rows))
	for i, f := range rows {
		if len(f) < okxKlineFields {
			return nil, malformed(source, i, "got %d fields, need %d", len(f), okxKlineFields)
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
		if c.QuoteVolume, err = parseNumber(f[6]); err != nil {
			return nil, malformed(source, i, "quote_volume: %v", err)
		}
		trades, err := parseNumber(f[7])
		if err != nil {
			return nil, malformed(source, i, "trades: %v", err)
		}
		c.Trades = int64(trades)

		if span > 0 {
			c.CloseTime = c.OpenTime + span - 1
		} else {
			c.CloseTime = c.OpenTime + 1
		}
		candles = append(candles, c)
	}

	return recentFirst(source, candles)
}

type okxTicker struct {
	InstID    string `json:"instId"`
	Last      number `json:"last"`
	Open24h   number `json:"open24h"`
	High24h   number `json:"high24h"`
	Low24h    number `json:"low24h"`
	Vol24h    number `json:"vol24h"`
	VolCcy24h number `json:"volCcy24h"`
}

func (t okxTicker) model(fallback string) models.Ticker24h {
	last, open := float64(t.Last), float64(t.Open24h)
	var pct float64
	if open != 0 {
		pct = (last - open) * 100 / open
	}
	return models.Ticker24h{
		Symbol:             orUpper(t.InstID, fallback),
		PriceChange:        last - open,
		PriceChangePercent: pct,
		LastPrice:          last,
		HighPrice:          float64(t.High24h),
		LowPrice:           float64(t.Low24h),
		Volume:             float64(t.Vol24h),
		QuoteVolume:        float64(t.VolCcy24h),
		OpenPrice:          open,
		PrevClosePrice:     open,
	}
}

// OKXTicker24h normalizes a /api/v5/market/ticker response
func OKXTicker24h(symbol string, body []byte) (*models.Ticker24h, error) {
	var raw okxTicker
	if err := okxFirst("okx ticker", body, &raw); err != nil {
		return nil, err
	}
	t := raw.model(symbol)
	return &t, nil
}

// OKXCurrentPrice reads the last price from a /api/v5/market/ticker response
func OKXCurrentPrice(symbol string, body []byte) (*models.CurrentPrice, error) {
	var raw okxTicker
	if err := okxFirst("okx price", body, &raw); err != nil {
		return nil, err
	}
	return &models.CurrentPrice{Symbol: orUpper(raw.InstID, symbol), Price: float64(raw.Last)}, nil
}

// OKXFundingRate normalizes a /api/v5/public/funding-rate response
func OKXFundingRate(symbol string, body []byte) (*models.FundingRate, error) {
	var raw struct {
		InstID          string `json:"instId"`
		FundingRate     number `json:"fundingRate"`
		NextFundingTime number `json:"nextFundingTime"`
		MarkPx          number `json:"markPx"`
		IdxPx           number `json:"idxPx"`
	}
	if err := okxFirst("okx funding rate", body, &raw); err != nil {
		return nil, err
	}
	return &models.FundingRate{
		Symbol:          orUpper(raw.InstID, symbol),
		LastFundingRate: float64(raw.FundingRate),
		NextFundingTime: int64(raw.NextFundingTime),
		MarkPrice:       float64(raw.MarkPx),
		IndexPrice:      float64(raw.IdxPx),
	}, nil
}

// OKXOpenInterest normalizes a /api/v5/public/open-interest response
func OKXOpenInterest(symbol string, body []byte) (*models.OpenInterest, error) {
	var raw struct {
		InstID string `json:"instId"`
		OI     number `json:"oi"`
		TS     number `json:"ts"`
	}
	if err := okxFirst("okx open interest", body, &raw); err != nil {
		return nil, err
	}
	return &models.OpenInterest{
		Symbol:       orUpper(raw.InstID, symbol),
		OpenInterest: float64(raw.OI),
		Timestamp:    int64(raw.TS),
	}, nil
}

// OKXOrderBook normalizes a /api/v5/market/books response; the book timestamp becomes the update id
func OKXOrderBook(symbol string, body []byte) (*models.OrderBook, error) {
	const source = "okx books"

	var raw struct {
		Bids [][]json.RawMessage `json:"bids"`
		Asks [][]json.RawMessage `json:"asks"`
		TS   number              `json:"ts"`
	}
	if err := okxFirst(source, body, &raw); err != nil {
		return nil, err
	}
	return buildOrderBook(source, strings.ToUpper(symbol), int64(raw.TS), raw.Bids, raw.Asks)
}

// OKXSymbols filters a /api/v5/public/instruments response by state and quote currency
func OKXSymbols(body []byte, state string, quotes []string) ([]string, error) {
	const source = "okx instruments"

	data, err := okxData(source, body)
	if err != nil {
		return nil, err
	}
	var items []struct {
		InstID string `json:"instId"`
		State  string `json:"state"`
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, malformed(source, -1, "%v", err)
	}

	quoteSet := quoteFilter(quotes)
	var symbols []string
	for _, item := range items {
		if state != "" && item.State != state {
			continue
		}
		if item.InstID == "" {
			continue
		}
		if quoteSet != nil && !quoteSet[okxQuote(item.InstID)] {
			continue
		}
		symbols = append(symbols, item.InstID)
	}
	return symbols, nil
}

// OKXTickers normalizes a /api/v5/market/tickers list. Unparseable entries are skipped.
func OKXTickers(body []byte, quotes []string) ([]models.Ticker24h, error) {
	const source = "okx tickers"

	data, err := okxData(source, body)
	if err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, malformed(source, -1, "data is not an array: %v", err)
	}

	quoteSet := quoteFilter(quotes)
	tickers := make([]models.Ticker24h, 0, len(entries))
	for _, entry := range entries {
		var raw okxTicker
		if err := json.Unmarshal(entry, &raw); err != nil || raw.InstID == "" {
			continue
		}
		raw.InstID = strings.ToUpper(raw.InstID)
		if quoteSet != nil && !quoteSet[okxQuote(raw.InstID)] {
			continue
		}
		tickers = append(tickers, raw.model(raw.InstID))
	}
	return tickers, nil
}

// okxQuote extracts USDT from BTC-USDT-SWAP
func okxQuote(instID string) string {
	parts := strings.Split(strings.ToUpper(instID), "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
