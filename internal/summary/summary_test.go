package summary

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Alias1177/volscan/internal/calculate"
	"github.com/Alias1177/volscan/models"
)

// flatPayload builds an enriched payload of n flat candles at 100, newest-first, with
// the latest close replaced by last
func flatPayload(n int, last float64) *models.Payload {
	raw := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		price := 100.0
		if i == n-1 {
			price = last
		}
		raw[n-1-i] = models.Candle{
			Symbol: "BTCUSDT", OpenTime: int64(i) * 60_000,
			Open: price, High: price, Low: price, Close: price, Volume: 10,
		}
	}
	return &models.Payload{Exchange: "binance", Klines: calculate.Enrich(raw)}
}

func TestBuildSingleCandle(t *testing.T) {
	p := flatPayload(1, 42)
	s, err := Build(p, models.DefaultThresholds())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if s.CurrentPrice != 42 || s.KlineClose != 42 {
		t.Errorf("CurrentPrice = %v, KlineClose = %v, want 42", s.CurrentPrice, s.KlineClose)
	}
	if s.MA20 != nil || s.MA50 != nil || s.RSI14 != nil || s.ATR14 != nil || s.PriceChangePct != nil || s.Volatility20Pct != nil {
		t.Errorf("indicator fields should be absent: %+v", s)
	}
	if s.FundingRate != nil || s.OrderBookImbalance != nil || s.Change24hPct != nil || s.NextFundingTime != nil {
		t.Errorf("auxiliary fields should be absent: %+v", s)
	}
	if s.Signals.VolumeRatio != 0 || s.Signals.VolumeStatus != "low" {
		t.Errorf("volume signal = %v/%q, want 0/low", s.Signals.VolumeRatio, s.Signals.VolumeStatus)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"ma20":null`, `"funding_rate":null`, `"order_book_imbalance":null`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("summary JSON missing %s: %s", key, data)
		}
	}
}

func TestBuildFlatSeriesWithJump(t *testing.T) {
	s, err := Build(flatPayload(21, 101), models.DefaultThresholds())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if s.MA20 == nil || *s.MA20 != 100.05 {
		t.Errorf("MA20 = %v, want 100.05", s.MA20)
	}
	if s.PriceChangePct == nil || *s.PriceChangePct != 1 {
		t.Errorf("PriceChangePct = %v, want 1", s.PriceChangePct)
	}
	if s.ATR14 == nil || *s.ATR14 != calculate.Round(1.0/14, 8) {
		t.Errorf("ATR14 = %v, want %v", s.ATR14, calculate.Round(1.0/14, 8))
	}
	if s.Signals.VolumeRatio != 1 || s.Signals.VolumeStatus != "normal" {
		t.Errorf("volume signal = %v/%q, want 1/normal", s.Signals.VolumeRatio, s.Signals.VolumeStatus)
	}
	if s.Signals.RSIStatus == nil || *s.Signals.RSIStatus != "extreme_overbought" || *s.Signals.RSILevel != ">80" {
		t.Errorf("rsi signal = %v/%v", s.Signals.RSIStatus, s.Signals.RSILevel)
	}
}

func TestBuildAuxiliary(t *testing.T) {
	p := flatPayload(3, 100)
	p.CurrentPrice = &models.CurrentPrice{Symbol: "BTCUSDT", Price: 100.5}
	p.Ticker24h = &models.Ticker24h{PriceChangePercent: 2.5, HighPrice: 110, LowPrice: 90, Volume: 1000, QuoteVolume: 100000}
	p.FundingRate = &models.FundingRate{LastFundingRate: 0.0001, NextFundingTime: 1700000000000}
	p.OpenInterest = &models.OpenInterest{OpenInterest: 0}
	p.OrderBook = &models.OrderBook{
		Bids: []models.PriceLevel{{100, 5}, {99, 3}},
		Asks: []models.PriceLevel{{101, 1}},
	}

	s, err := Build(p, models.DefaultThresholds())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.CurrentPrice != 100.5 || s.KlineClose != 100 {
		t.Errorf("prices = %v/%v", s.CurrentPrice, s.KlineClose)
	}
	if s.Change24hPct == nil || *s.Change24hPct != 2.5 || *s.High24h != 110 || *s.QuoteVolume24h != 100000 {
		t.Errorf("ticker fields = %+v", s)
	}
	if s.FundingRate == nil || *s.FundingRate != 0.0001 || *s.NextFundingTime != 1700000000000 {
		t.Errorf("funding fields = %v/%v", s.FundingRate, s.NextFundingTime)
	}
	if s.OpenInterest == nil || *s.OpenInterest != 0 {
		t.Errorf("present zero open interest should stay 0, got %v", s.OpenInterest)
	}
	want := (797.0 - 101.0) / 898.0
	if s.OrderBookImbalance == nil || *s.OrderBookImbalance != want {
		t.Errorf("OrderBookImbalance = %v, want %v", s.OrderBookImbalance, want)
	}

	p.OrderBook = &models.OrderBook{}
	s, _ = Build(p, models.DefaultThresholds())
	if s.OrderBookImbalance == nil || *s.OrderBookImbalance != 0 {
		t.Errorf("empty book imbalance = %v, want 0", s.OrderBookImbalance)
	}

	p.OrderBook = &models.OrderBook{Bids: []models.PriceLevel{{100, 5}}}
	s, _ = Build(p, models.DefaultThresholds())
	if s.OrderBookImbalance == nil || *s.OrderBookImbalance != 1 {
		t.Errorf("bid-only book imbalance = %v, want 1", s.OrderBookImbalance)
	}
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(&models.Payload{}, models.DefaultThresholds())
	if !errors.Is(err, ErrNoKlines) {
		t.Errorf("Build() error = %v, want ErrNoKlines", err)
	}
}

func TestBuildPicksLatestByOpenTime(t *testing.T) {
	p := flatPayload(5, 120)
	reversed := make([]models.EnrichedCandle, len(p.Klines))
	for i, c := range p.Klines {
		reversed[len(p.Klines)-1-i] = c
	}
	p.Klines = reversed

	s, err := Build(p, models.DefaultThresholds())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if s.KlineClose != 120 {
		t.Errorf("KlineClose = %v, want 120", s.KlineClose)
	}
}

func TestTrendAndRSILabels(t *testing.T) {
	th := models.DefaultThresholds().Summary

	trends := []struct {
		price, ma20, ma50 float64
		expected          string
	}{
		{110, 105, 100, "uptrend"},
		{90, 95, 100, "downtrend"},
		{104, 105, 100, "uptrend_pullback"},
		{97, 95, 100, "downtrend_rebound"},
		{105, 105, 105, "sideways"},
	}
	for _, tt := range trends {
		if got := trendOf(tt.price, tt.ma20, tt.ma50); got != tt.expected {
			t.Errorf("trendOf(%v, %v, %v) = %q, want %q", tt.price, tt.ma20, tt.ma50, got, tt.expected)
		}
	}

	rsi := []struct {
		value  float64
		status string
		level  string
	}{
		{10, "extreme_oversold", "<20"},
		{25, "oversold", "20-30"},
		{85, "extreme_overbought", ">80"},
		{75, "overbought", "70-80"},
		{60, "bullish", "50-70"},
		{40, "bearish", "30-50"},
		{30, "", ""},
	}
	for _, tt := range rsi {
		status, level := rsiBucket(tt.value, th)
		if status != tt.status || level != tt.level {
			t.Errorf("rsiBucket(%v) = %q/%q, want %q/%q", tt.value, status, level, tt.status, tt.level)
		}
	}
}

func TestVolumeRatio(t *testing.T) {
	candles := make([]models.EnrichedCandle, 21)
	for i := range candles {
		candles[i] = models.EnrichedCandle{Candle: models.Candle{OpenTime: int64(100 - i), Volume: 10}}
	}
	candles[0].Volume = 35

	if got := VolumeRatio(candles, 20); got != 3.5 {
		t.Errorf("VolumeRatio() = %v, want 3.5", got)
	}
	if got := VolumeRatio(candles[:20], 20); got != 0 {
		t.Errorf("VolumeRatio() with 20 candles = %v, want 0", got)
	}

	th := models.DefaultThresholds().Summary
	statuses := map[float64]string{3.5: "extreme_spike", 2.5: "spike", 1.6: "elevated", 1.0: "normal", 0.4: "low"}
	for ratio, want := range statuses {
		if got := volumeStatus(ratio, th); got != want {
			t.Errorf("volumeStatus(%v) = %q, want %q", ratio, got, want)
		}
	}
}

func TestFormatText(t *testing.T) {
	p := flatPayload(21, 101)
	p.CurrentPrice = &models.CurrentPrice{Price: 101.5}
	s, err := Build(p, models.DefaultThresholds())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	text := FormatText(s)
	sections := []string{"[PRICE]", "[TECHNICAL INDICATORS]", "[SIGNALS]", "[MARKET DATA]"}
	last := -1
	for _, section := range sections {
		idx := strings.Index(text, section)
		if idx < 0 || idx < last {
			t.Fatalf("section %s missing or out of order in:\n%s", section, text)
		}
		last = idx
	}
	for _, line := range []string{"Symbol: BTCUSDT", "Current: 101.5", "K-line Close: 101", "MA20: 100.05", "Order Book Imbalance: null"} {
		if !strings.Contains(text, line) {
			t.Errorf("FormatText() missing %q", line)
		}
	}
}

func TestFormatReportSortsKeys(t *testing.T) {
	report := models.SignalReport{
		Status:         models.StatusOK,
		Signals:        []models.Signal{{Type: models.SignalVolumeExpansion, Description: "x", Strength: 2}},
		SignalStrength: 2,
		Conclusion:     models.ConclusionLow,
	}

	out, err := FormatReport(report)
	if err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}
	if strings.Index(out, `"conclusion"`) > strings.Index(out, `"signal_strength"`) ||
		strings.Index(out, `"signal_strength"`) > strings.Index(out, `"status"`) {
		t.Errorf("keys not sorted:\n%s", out)
	}
	if !strings.Contains(out, "\n  ") {
		t.Errorf("output not indented:\n%s", out)
	}
}
