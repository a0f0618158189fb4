package models

import (
	"encoding/json"
)

// Candle represents a single OHLCV bar in canonical form
type Candle struct {
	Symbol      string  `json:"symbol"`
	OpenTime    int64   `json:"open_time"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	CloseTime   int64   `json:"close_time"`
	QuoteVolume float64 `json:"quote_volume"`
	Trades      int64   `json:"trades"`
}

// EnrichedCandle is a Candle plus the derived indicator fields.
// A nil field means there was not enough history to compute it.
type EnrichedCandle struct {
	Candle
	MA20            *float64 `json:"ma20,omitempty"`
	MA50            *float64 `json:"ma50,omitempty"`
	RSI14           *float64 `json:"rsi14,omitempty"`
	PriceChange     *float64 `json:"price_change,omitempty"`
	PriceChangePct  *float64 `json:"price_change_pct,omitempty"`
	ATR14           *float64 `json:"atr14,omitempty"`
	ATR14Pct        *float64 `json:"atr14_pct,omitempty"`
	Volatility20    *float64 `json:"volatility_20,omitempty"`
	Volatility20Pct *float64 `json:"volatility_20_pct,omitempty"`
}

// Ticker24h holds rolling 24 hour statistics
type Ticker24h struct {
	Symbol             string  `json:"symbol"`
	PriceChange        float64 `json:"priceChange"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	LastPrice          float64 `json:"lastPrice"`
	HighPrice          float64 `json:"highPrice"`
	LowPrice           float64 `json:"lowPrice"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quoteVolume"`
	Count              int64   `json:"count"`
	OpenPrice          float64 `json:"openPrice"`
	PrevClosePrice     float64 `json:"prevClosePrice"`
}

// FundingRate holds the perpetual funding snapshot
type FundingRate struct {
	Symbol          string  `json:"symbol"`
	LastFundingRate float64 `json:"lastFundingRate"`
	NextFundingTime int64   `json:"nextFundingTime"`
	MarkPrice       float64 `json:"markPrice"`
	IndexPrice      float64 `json:"indexPrice"`
}

// UnmarshalJSON accepts "fundingRate" as an alias for a missing or zero "lastFundingRate".
func (f *FundingRate) UnmarshalJSON(data []byte) error {
	type plain FundingRate
	var aux struct {
		plain
		FundingRate *float64 `json:"fundingRate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = FundingRate(aux.plain)
	if f.LastFundingRate == 0 && aux.FundingRate != nil {
		f.LastFundingRate = *aux.FundingRate
	}
	return nil
}

// OpenInterest holds the total outstanding contracts at a point in time
type OpenInterest struct {
	Symbol       string  `json:"symbol"`
	OpenInterest float64 `json:"openInterest"`
	Timestamp    int64   `json:"timestamp"`
}

// PriceLevel is a [price, quantity] pair of an order book side
type PriceLevel [2]float64

// Price of the level
func (l PriceLevel) Price() float64 { return l[0] }

// Quantity resting at the level
func (l PriceLevel) Quantity() float64 { return l[1] }

// OrderBook holds bid and ask depth, best level first
type OrderBook struct {
	Symbol       string       `json:"symbol"`
	LastUpdateID int64        `json:"lastUpdateId"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
	BidTotalQty  float64      `json:"bid_total_qty"`
	AskTotalQty  float64      `json:"ask_total_qty"`
}

// CurrentPrice is the last traded price
type CurrentPrice struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Auxiliary groups the optional market snapshots that accompany a candle series
type Auxiliary struct {
	Ticker24h    *Ticker24h
	FundingRate  *FundingRate
	OpenInterest *OpenInterest
	OrderBook    *OrderBook
	CurrentPrice *CurrentPrice
}

// Payload is the full snapshot of one symbol/interval as written by the fetcher
type Payload struct {
	Exchange     string           `json:"exchange,omitempty"`
	Symbol       string           `json:"symbol,omitempty"`
	Interval     string           `json:"interval,omitempty"`
	Klines       []EnrichedCandle `json:"klines"`
	Ticker24h    *Ticker24h       `json:"ticker_24hr,omitempty"`
	FundingRate  *FundingRate     `json:"funding_rate,omitempty"`
	OpenInterest *OpenInterest    `json:"open_interest,omitempty"`
	OrderBook    *OrderBook       `json:"order_book,omitempty"`
	CurrentPrice *CurrentPrice    `json:"current_price,omitempty"`
}

// Aux returns the auxiliary snapshots carried by the payload
func (p *Payload) Aux() Auxiliary {
	return Auxiliary{
		Ticker24h:    p.Ticker24h,
		FundingRate:  p.FundingRate,
		OpenInterest: p.OpenInterest,
		OrderBook:    p.OrderBook,
		CurrentPrice: p.CurrentPrice,
	}
}

// Status values shared by the regime classifier and the signal detector
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
	StatusNoVolatilityData = "no_volatility_data"
)

// Volatility regimes
const (
	RegimeLow    = "low_volatility"
	RegimeNormal = "normal_volatility"
	RegimeHigh   = "high_volatility"
)

// Volatility trends
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// Volatility proxy keys
const (
	VolatilityKeyATR    = "atr14_pct"
	VolatilityKeyStdDev = "volatility_20_pct"
)

// VolatilityRegime is the point-in-time volatility classification.
// Only Status and Message are meaningful unless Status is StatusOK.
type VolatilityRegime struct {
	Status               string  `json:"status"`
	Message              string  `json:"message,omitempty"`
	CurrentVolatility    float64 `json:"current_volatility"`
	AverageVolatility    float64 `json:"average_volatility"`
	MaxVolatility        float64 `json:"max_volatility"`
	MinVolatility        float64 `json:"min_volatility"`
	VolatilityPercentile float64 `json:"volatility_percentile"`
	Regime               string  `json:"regime"`
	VolatilityTrend      string  `json:"volatility_trend"`
	VolatilityKey        string  `json:"volatility_key"`
}

// MarshalJSON drops the measurement fields of a non-ok result
func (r VolatilityRegime) MarshalJSON() ([]byte, error) {
	if r.Status != StatusOK {
		return json.Marshal(struct {
			Status  string `json:"status"`
			Message string `json:"message,omitempty"`
		}{r.Status, r.Message})
	}
	type plain VolatilityRegime
	return json.Marshal(plain(r))
}

// SignalType tags a detector rule
type SignalType string

const (
	SignalVolatilityTrendReversal SignalType = "volatility_trend_reversal"
	SignalCompressionBreakout     SignalType = "volatility_compression_breakout"
	SignalVolumeExpansion         SignalType = "volume_expansion"
	SignalRSIOversold             SignalType = "rsi_oversold"
	SignalRSIOverbought           SignalType = "rsi_overbought"
	SignalPriceBreakoutMA20       SignalType = "price_breakout_ma20"
	SignalPriceBreakdownMA20      SignalType = "price_breakdown_ma20"
	SignalExtremeFundingRate      SignalType = "extreme_funding_rate"
	SignalOpenInterestPresent     SignalType = "open_interest_present"
	SignalOrderBookImbalance      SignalType = "order_book_imbalance"
	SignalHigh24hVolatility       SignalType = "high_24h_volatility"
)

// Signal is one fired detector rule
type Signal struct {
	Type        SignalType `json:"type"`
	Description string     `json:"description"`
	Strength    int        `json:"strength"`
}

// Conclusion buckets of the aggregate verdict
const (
	ConclusionHigh   = "high_probability"
	ConclusionMedium = "medium_probability"
	ConclusionLow    = "low_probability"
	ConclusionNone   = "no_signal"
)

// SignalReport is the outcome of the volatility expansion detector
type SignalReport struct {
	Status             string            `json:"status"`
	VolatilityAnalysis *VolatilityRegime `json:"volatility_analysis,omitempty"`
	Signals            []Signal          `json:"signals"`
	SignalStrength     int               `json:"signal_strength"`
	Conclusion         string            `json:"conclusion,omitempty"`
	ConclusionText     string            `json:"conclusion_text,omitempty"`
}

// SummarySignals is the compact signal map of a Summary
type SummarySignals struct {
	RSIStatus      *string  `json:"rsi_status,omitempty"`
	RSILevel       *string  `json:"rsi_level,omitempty"`
	PriceVsMA20Pct *float64 `json:"price_vs_ma20_pct,omitempty"`
	PriceVsMA50Pct *float64 `json:"price_vs_ma50_pct,omitempty"`
	MA20VsMA50Pct  *float64 `json:"ma20_vs_ma50_pct,omitempty"`
	Trend          *string  `json:"trend,omitempty"`
	VolumeRatio    float64  `json:"volume_ratio"`
	VolumeStatus   string   `json:"volume_status"`
}

// Summary is the flat reporting record for the latest candle
type Summary struct {
	Symbol             string         `json:"symbol"`
	CurrentPrice       float64        `json:"current_price"`
	KlineClose         float64        `json:"kline_close"`
	Open               float64        `json:"open"`
	High               float64        `json:"high"`
	Low                float64        `json:"low"`
	MA20               *float64       `json:"ma20"`
	MA50               *float64       `json:"ma50"`
	RSI14              *float64       `json:"rsi14"`
	PriceChangePct     *float64       `json:"price_change_pct"`
	ATR14              *float64       `json:"atr14"`
	ATR14Pct           *float64       `json:"atr14_pct"`
	Volatility20Pct    *float64       `json:"volatility_20_pct"`
	Change24hPct       *float64       `json:"change_24h_pct"`
	High24h            *float64       `json:"high_24h"`
	Low24h             *float64       `json:"low_24h"`
	Volume24h          *float64       `json:"volume_24h"`
	QuoteVolume24h     *float64       `json:"quote_volume_24h"`
	FundingRate        *float64       `json:"funding_rate"`
	NextFundingTime    *int64         `json:"next_funding_time"`
	OpenInterest       *float64       `json:"open_interest"`
	OrderBookImbalance *float64       `json:"order_book_imbalance"`
	Signals            SummarySignals `json:"signals"`
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }
