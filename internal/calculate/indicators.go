package calculate

import (
	"github.com/Alias1177/volscan/models"
)

// Indicator windows
const (
	MA20Period       = 20
	MA50Period       = 50
	RSIPeriod        = 14
	ATRPeriod        = 14
	VolatilityPeriod = 20
)

// Enrich derives every indicator field for a candle sequence. Windows are evaluated over
// the series ordered by open time, and each result is written back to the candle's input
// position, so the output has the same length and order as the input.
func Enrich(candles []models.Candle) []models.EnrichedCandle {
	out := make([]models.EnrichedCandle, len(candles))
	if len(candles) == 0 {
		return out
	}

	plain := make([]models.EnrichedCandle, len(candles))
	for i, c := range candles {
		plain[i] = models.EnrichedCandle{Candle: c}
	}
	order := models.Chronological(plain)

	n := len(order)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for pos, idx := range order {
		closes[pos] = candles[idx].Close
		highs[pos] = candles[idx].High
		lows[pos] = candles[idx].Low
	}

	ma20 := movingAverage(closes, MA20Period)
	ma50 := movingAverage(closes, MA50Period)
	rsi := calculateRSI(closes, RSIPeriod)
	atr, atrPct := calculateATR(highs, lows, closes, ATRPeriod)
	vol, volPct := calculateVolatility(closes, VolatilityPeriod)
	change, changePct := priceChanges(closes)

	for pos, idx := range order {
		out[idx] = models.EnrichedCandle{
			Candle:          candles[idx],
			MA20:            ma20[pos],
			MA50:            ma50[pos],
			RSI14:           rsi[pos],
			PriceChange:     change[pos],
			PriceChangePct:  changePct[pos],
			ATR14:           atr[pos],
			ATR14Pct:        atrPct[pos],
			Volatility20:    vol[pos],
			Volatility20Pct: volPct[pos],
		}
	}

	return out
}

// priceChanges compares each close with the previous one
func priceChanges(closes []float64) (change, changePct []*float64) {
	change = make([]*float64, len(closes))
	changePct = make([]*float64, len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		change[i] = round(closes[i]-prev, pricePlaces)
		if prev != 0 {
			changePct[i] = round((closes[i]-prev)/prev*100, changePlaces)
		}
	}
	return change, changePct
}
