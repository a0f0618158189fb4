package summary

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Alias1177/volscan/internal/analyze"
	"github.com/Alias1177/volscan/internal/calculate"
	"github.com/Alias1177/volscan/models"
)

// ErrNoKlines is returned when a payload carries no candles to summarize
var ErrNoKlines = errors.New("no kline data in payload")

// Build flattens the latest candle and the auxiliary snapshots of a payload into a Summary.
// Klines must already carry their indicator fields.
func Build(p *models.Payload, th models.Thresholds) (*models.Summary, error) {
	latest, ok := models.LatestCandle(p.Klines)
	if !ok {
		return nil, ErrNoKlines
	}

	s := &models.Summary{
		Symbol:          symbolOf(p, latest),
		CurrentPrice:    latest.Close,
		KlineClose:      latest.Close,
		Open:            latest.Open,
		High:            latest.High,
		Low:             latest.Low,
		MA20:            latest.MA20,
		MA50:            latest.MA50,
		RSI14:           latest.RSI14,
		PriceChangePct:  latest.PriceChangePct,
		ATR14:           latest.ATR14,
		ATR14Pct:        latest.ATR14Pct,
		Volatility20Pct: latest.Volatility20Pct,
	}
	if p.CurrentPrice != nil {
		s.CurrentPrice = p.CurrentPrice.Price
	}

	if t := p.Ticker24h; t != nil {
		s.Change24hPct = models.Float(t.PriceChangePercent)
		s.High24h = models.Float(t.HighPrice)
		s.Low24h = models.Float(t.LowPrice)
		s.Volume24h = models.Float(t.Volume)
		s.QuoteVolume24h = models.Float(t.QuoteVolume)
	}
	if f := p.FundingRate; f != nil {
		s.FundingRate = models.Float(f.LastFundingRate)
		next := f.NextFundingTime
		s.NextFundingTime = &next
	}
	if oi := p.OpenInterest; oi != nil {
		s.OpenInterest = models.Float(oi.OpenInterest)
	}
	if p.OrderBook != nil {
		imbalance, _ := analyze.OrderBookImbalance(p.OrderBook, th.Summary.OrderBookDepth)
		s.OrderBookImbalance = models.Float(imbalance)
	}

	s.Signals = compactSignals(s, p.Klines, th.Summary)
	return s, nil
}

func symbolOf(p *models.Payload, latest models.EnrichedCandle) string {
	switch {
	case latest.Symbol != "":
		return latest.Symbol
	case p.Ticker24h != nil && p.Ticker24h.Symbol != "":
		return p.Ticker24h.Symbol
	case p.CurrentPrice != nil && p.CurrentPrice.Symbol != "":
		return p.CurrentPrice.Symbol
	case p.Exchange != "":
		return p.Exchange
	}
	return "unknown"
}

func compactSignals(s *models.Summary, klines []models.EnrichedCandle, th models.SummaryThresholds) models.SummarySignals {
	var sig models.SummarySignals

	if s.RSI14 != nil {
		status, level := rsiBucket(*s.RSI14, th)
		if status != "" {
			sig.RSIStatus = &status
			sig.RSILevel = &level
		}
	}

	price := s.CurrentPrice
	if s.MA20 != nil && s.MA50 != nil && *s.MA20 != 0 && *s.MA50 != 0 && price != 0 {
		ma20, ma50 := *s.MA20, *s.MA50
		sig.PriceVsMA20Pct = models.Float(calculate.Round((price-ma20)/ma20*100, 2))
		sig.PriceVsMA50Pct = models.Float(calculate.Round((price-ma50)/ma50*100, 2))
		sig.MA20VsMA50Pct = models.Float(calculate.Round((ma20-ma50)/ma50*100, 2))
		trend := trendOf(price, ma20, ma50)
		sig.Trend = &trend
	}

	ratio := VolumeRatio(klines, th.VolumeLookback)
	sig.VolumeRatio = calculate.Round(ratio, 2)
	sig.VolumeStatus = volumeStatus(ratio, th)

	return sig
}

func rsiBucket(rsi float64, th models.SummaryThresholds) (status, level string) {
	switch {
	case rsi < th.RSIExtremeOversold:
		return "extreme_oversold", "<" + num(th.RSIExtremeOversold)
	case rsi < th.RSIOversold:
		return "oversold", num(th.RSIExtremeOversold) + "-" + num(th.RSIOversold)
	case rsi > th.RSIExtremeOverbought:
		return "extreme_overbought", ">" + num(th.RSIExtremeOverbought)
	case rsi > th.RSIOverbought:
		return "overbought", num(th.RSIOverbought) + "-" + num(th.RSIExtremeOverbought)
	case rsi > th.RSIBullish:
		return "bullish", num(th.RSIBullish) + "-" + num(th.RSIOverbought)
	case rsi > th.RSIBearish:
		return "bearish", num(th.RSIBearish) + "-" + num(th.RSIBullish)
	}
	return "", ""
}

func trendOf(price, ma20, ma50 float64) string {
	switch {
	case price > ma20 && ma20 > ma50:
		return "uptrend"
	case price < ma20 && ma20 < ma50:
		return "downtrend"
	case ma20 > ma50 && price < ma20:
		return "uptrend_pullback"
	case ma20 < ma50 && price > ma20:
		return "downtrend_rebound"
	}
	return "sideways"
}

// VolumeRatio divides the latest volume by the mean volume of the lookback candles before it.
// It is 0 with fewer than lookback+1 candles or a zero mean.
func VolumeRatio(klines []models.EnrichedCandle, lookback int) float64 {
	if lookback <= 0 || len(klines) < lookback+1 {
		return 0
	}

	chrono := models.OldestFirst(klines)
	last := chrono[len(chrono)-1].Volume
	var sum float64
	for _, c := range chrono[len(chrono)-lookback-1 : len(chrono)-1] {
		sum += c.Volume
	}
	avg := sum / float64(lookback)
	if avg <= 0 {
		return 0
	}
	return last / avg
}

func volumeStatus(ratio float64, th models.SummaryThresholds) string {
	switch {
	case ratio > th.VolumeExtremeSpike:
		return "extreme_spike"
	case ratio > th.VolumeSpike:
		return "spike"
	case ratio > th.VolumeElevated:
		return "elevated"
	case ratio < th.VolumeLow:
		return "low"
	}
	return "normal"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v *float64) string {
	if v == nil {
		return "null"
	}
	return num(*v)
}

func optionalInt(v *int64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(*v)
}
