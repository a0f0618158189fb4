package analyze

import (
	"testing"

	"github.com/Alias1177/volscan/internal/calculate"
	"github.com/Alias1177/volscan/models"
)

// generateTestCandles builds n enriched candles newest-first from a generator indexed oldest-first
func generateTestCandles(n int, generator func(i int) models.EnrichedCandle) []models.EnrichedCandle {
	candles := make([]models.EnrichedCandle, n)
	for i := 0; i < n; i++ {
		c := generator(i)
		c.Symbol = "BTCUSDT"
		c.OpenTime = int64(i) * 60_000
		candles[n-1-i] = c
	}
	return candles
}

// quiet is a sequence on which no candle rule fires
func quiet(i int) models.EnrichedCandle {
	return models.EnrichedCandle{
		Candle:         models.Candle{Open: 100, High: 101, Low: 99, Close: 100, Volume: 100},
		MA20:           models.Float(100),
		RSI14:          models.Float(50),
		PriceChangePct: models.Float(0),
		ATR14Pct:       models.Float(1),
	}
}

func withLatest(n int, edit func(c *models.EnrichedCandle)) []models.EnrichedCandle {
	return generateTestCandles(n, func(i int) models.EnrichedCandle {
		c := quiet(i)
		if i == n-1 {
			edit(&c)
		}
		return c
	})
}

func signalTypes(r models.SignalReport) map[models.SignalType]bool {
	out := make(map[models.SignalType]bool, len(r.Signals))
	for _, s := range r.Signals {
		out[s.Type] = true
	}
	return out
}

func TestDetectInsufficientData(t *testing.T) {
	th := models.DefaultThresholds()

	r := DetectVolatilityExpansion(generateTestCandles(19, quiet), models.Auxiliary{}, th)
	if r.Status != models.StatusInsufficientData || r.SignalStrength != 0 || r.Signals == nil || len(r.Signals) != 0 {
		t.Errorf("19 candles: got %+v", r)
	}

	bare := generateTestCandles(25, func(i int) models.EnrichedCandle {
		return models.EnrichedCandle{Candle: models.Candle{Close: 100}}
	})
	r = DetectVolatilityExpansion(bare, models.Auxiliary{}, th)
	if r.Status != models.StatusNoVolatilityData || len(r.Signals) != 0 || r.VolatilityAnalysis != nil {
		t.Errorf("no indicators: got %+v", r)
	}
}

func TestDetectCandleRules(t *testing.T) {
	th := models.DefaultThresholds()

	tests := []struct {
		name     string
		candles  []models.EnrichedCandle
		expected []models.SignalType
		strength int
	}{
		{
			name:     "quiet market",
			candles:  generateTestCandles(25, quiet),
			strength: 0,
		},
		{
			name:     "volume spike",
			candles:  withLatest(25, func(c *models.EnrichedCandle) { c.Volume = 1000 }),
			expected: []models.SignalType{models.SignalVolumeExpansion},
			strength: 2,
		},
		{
			name:     "rsi oversold",
			candles:  withLatest(25, func(c *models.EnrichedCandle) { c.RSI14 = models.Float(25) }),
			expected: []models.SignalType{models.SignalRSIOversold},
			strength: 1,
		},
		{
			name:     "rsi overbought",
			candles:  withLatest(25, func(c *models.EnrichedCandle) { c.RSI14 = models.Float(75) }),
			expected: []models.SignalType{models.SignalRSIOverbought},
			strength: 1,
		},
		{
			name:     "close above ma20",
			candles:  withLatest(25, func(c *models.EnrichedCandle) { c.Close = 101; c.MA20 = models.Float(100.5) }),
			expected: []models.SignalType{models.SignalPriceBreakoutMA20},
			strength: 2,
		},
		{
			name:     "close below ma20",
			candles:  withLatest(25, func(c *models.EnrichedCandle) { c.Close = 99; c.MA20 = models.Float(99.5) }),
			expected: []models.SignalType{models.SignalPriceBreakdownMA20},
			strength: 2,
		},
		{
			name:     "zero ma20 never crosses",
			candles:  withLatest(25, func(c *models.EnrichedCandle) { c.Close = 101; c.MA20 = models.Float(0) }),
			strength: 0,
		},
		{
			name: "low volatility turning up with a widening bar",
			candles: generateTestCandles(20, func(i int) models.EnrichedCandle {
				c := quiet(i)
				tail := []float64{0.1, 0.15, 0.2, 0.25, 0.3}
				if i >= 15 {
					c.ATR14Pct = models.Float(tail[i-15])
				} else {
					c.ATR14Pct = models.Float(2)
				}
				switch i {
				case 18:
					c.PriceChangePct = models.Float(-0.5)
				case 19:
					c.PriceChangePct = models.Float(1.0)
				}
				return c
			}),
			expected: []models.SignalType{models.SignalVolatilityTrendReversal, models.SignalCompressionBreakout},
			strength: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DetectVolatilityExpansion(tt.candles, models.Auxiliary{}, th)
			if r.Status != models.StatusOK {
				t.Fatalf("Status = %q", r.Status)
			}
			if r.SignalStrength != tt.strength {
				t.Errorf("SignalStrength = %d, want %d (%+v)", r.SignalStrength, tt.strength, r.Signals)
			}
			got := signalTypes(r)
			if len(got) != len(tt.expected) {
				t.Errorf("signals = %+v, want %v", r.Signals, tt.expected)
			}
			for _, want := range tt.expected {
				if !got[want] {
					t.Errorf("missing signal %q", want)
				}
			}
		})
	}
}

func TestDetectAuxiliaryRules(t *testing.T) {
	th := models.DefaultThresholds()
	candles := generateTestCandles(25, quiet)

	tests := []struct {
		name     string
		aux      models.Auxiliary
		expected models.SignalType
		fires    bool
	}{
		{"funding 0.0007", models.Auxiliary{FundingRate: &models.FundingRate{LastFundingRate: 0.0007}}, models.SignalExtremeFundingRate, true},
		{"funding -0.0007", models.Auxiliary{FundingRate: &models.FundingRate{LastFundingRate: -0.0007}}, models.SignalExtremeFundingRate, true},
		{"funding 0.0002", models.Auxiliary{FundingRate: &models.FundingRate{LastFundingRate: 0.0002}}, models.SignalExtremeFundingRate, false},
		{"open interest", models.Auxiliary{OpenInterest: &models.OpenInterest{OpenInterest: 1234.5}}, models.SignalOpenInterestPresent, true},
		{"zero open interest", models.Auxiliary{OpenInterest: &models.OpenInterest{}}, models.SignalOpenInterestPresent, false},
		{
			"bid heavy book",
			models.Auxiliary{OrderBook: &models.OrderBook{
				Bids: []models.PriceLevel{{100, 5}, {99, 3}},
				Asks: []models.PriceLevel{{101, 1}},
			}},
			models.SignalOrderBookImbalance, true,
		},
		{
			"balanced book",
			models.Auxiliary{OrderBook: &models.OrderBook{
				Bids: []models.PriceLevel{{100, 1}},
				Asks: []models.PriceLevel{{100, 1}},
			}},
			models.SignalOrderBookImbalance, false,
		},
		{"empty book", models.Auxiliary{OrderBook: &models.OrderBook{}}, models.SignalOrderBookImbalance, false},
		{
			"one-sided book",
			models.Auxiliary{OrderBook: &models.OrderBook{Bids: []models.PriceLevel{{100, 5}}}},
			models.SignalOrderBookImbalance, false,
		},
		{"24h change 6%", models.Auxiliary{Ticker24h: &models.Ticker24h{PriceChangePercent: -6}}, models.SignalHigh24hVolatility, true},
		{"24h change 4%", models.Auxiliary{Ticker24h: &models.Ticker24h{PriceChangePercent: 4}}, models.SignalHigh24hVolatility, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DetectVolatilityExpansion(candles, tt.aux, th)
			if got := signalTypes(r)[tt.expected]; got != tt.fires {
				t.Errorf("%s fired = %v, want %v (%+v)", tt.expected, got, tt.fires, r.Signals)
			}
		})
	}
}

func TestOrderBookImbalance(t *testing.T) {
	book := &models.OrderBook{
		Bids: []models.PriceLevel{{100, 5}, {99, 3}},
		Asks: []models.PriceLevel{{101, 1}},
	}
	got, ok := OrderBookImbalance(book, 10)
	want := (797.0 - 101.0) / 898.0
	if !ok || got != want {
		t.Errorf("OrderBookImbalance() = %v, %v, want %v", got, ok, want)
	}

	if _, ok := OrderBookImbalance(nil, 10); ok {
		t.Error("OrderBookImbalance(nil) should report false")
	}

	deep := &models.OrderBook{Asks: []models.PriceLevel{{1, 1}}}
	for i := 0; i < 12; i++ {
		deep.Bids = append(deep.Bids, models.PriceLevel{1, 1})
	}
	got, _ = OrderBookImbalance(deep, 10)
	if got != 9.0/11.0 {
		t.Errorf("depth-limited imbalance = %v, want %v", got, 9.0/11.0)
	}
}

func TestStrengthIsMonotone(t *testing.T) {
	th := models.DefaultThresholds()
	candles := withLatest(25, func(c *models.EnrichedCandle) { c.Volume = 1000 })

	base := DetectVolatilityExpansion(candles, models.Auxiliary{}, th).SignalStrength
	full := DetectVolatilityExpansion(candles, models.Auxiliary{
		FundingRate:  &models.FundingRate{LastFundingRate: 0.001},
		OpenInterest: &models.OpenInterest{OpenInterest: 10},
		OrderBook:    &models.OrderBook{Bids: []models.PriceLevel{{100, 10}}, Asks: []models.PriceLevel{{100, 1}}},
		Ticker24h:    &models.Ticker24h{PriceChangePercent: 8},
	}, th)

	if full.SignalStrength < base {
		t.Errorf("adding firing conditions lowered strength: %d < %d", full.SignalStrength, base)
	}
	if full.SignalStrength != base+6 {
		t.Errorf("SignalStrength = %d, want %d", full.SignalStrength, base+6)
	}
	if full.Conclusion != models.ConclusionHigh || full.ConclusionText == "" {
		t.Errorf("Conclusion = %q (%q)", full.Conclusion, full.ConclusionText)
	}
}

func TestConclude(t *testing.T) {
	dt := models.DefaultThresholds().Detector

	tests := []struct {
		strength int
		expected string
	}{
		{0, models.ConclusionNone},
		{1, models.ConclusionNone},
		{2, models.ConclusionLow},
		{3, models.ConclusionLow},
		{4, models.ConclusionMedium},
		{5, models.ConclusionMedium},
		{6, models.ConclusionHigh},
		{16, models.ConclusionHigh},
	}

	for _, tt := range tests {
		if got := Conclude(tt.strength, dt); got != tt.expected {
			t.Errorf("Conclude(%d) = %q, want %q", tt.strength, got, tt.expected)
		}
	}

	if ConclusionRank(models.ConclusionHigh) <= ConclusionRank(models.ConclusionMedium) {
		t.Error("high_probability should outrank medium_probability")
	}
}

func TestDetectOnEnrichedSeries(t *testing.T) {
	raw := make([]models.Candle, 60)
	for i := range raw {
		price := 100 + float64(i%5)
		raw[len(raw)-1-i] = models.Candle{
			Symbol: "ETHUSDT", OpenTime: int64(i) * 3_600_000,
			Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 50,
		}
	}

	r := DetectVolatilityExpansion(calculate.Enrich(raw), models.Auxiliary{}, models.DefaultThresholds())
	if r.Status != models.StatusOK || r.VolatilityAnalysis == nil {
		t.Fatalf("got %+v", r)
	}
	if r.VolatilityAnalysis.VolatilityKey != models.VolatilityKeyATR {
		t.Errorf("VolatilityKey = %q", r.VolatilityAnalysis.VolatilityKey)
	}
}
