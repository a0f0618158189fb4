package calculate

import "math"

// trueRanges returns the true range of every candle. The first candle has no
// previous close, so its range is high minus low.
func trueRanges(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}
		prevClose := closes[i-1]
		tr[i] = math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-prevClose), math.Abs(lows[i]-prevClose)))
	}
	return tr
}

// calculateATR averages the true ranges of the period candles ending at each position,
// starting at position period. The first candle's range never enters a window.
func calculateATR(highs, lows, closes []float64, period int) (atr, atrPct []*float64) {
	atr = make([]*float64, len(closes))
	atrPct = make([]*float64, len(closes))
	if len(closes) < period+1 {
		return atr, atrPct
	}

	tr := trueRanges(highs, lows, closes)
	for i := period; i < len(closes); i++ {
		start := i - period + 1
		if start < 1 {
			start = 1
		}
		value := calculateAverage(tr[start : i+1])
		atr[i] = round(value, pricePlaces)
		if closes[i] > 0 {
			atrPct[i] = round(value/closes[i]*100, pctPlaces)
		}
	}
	return atr, atrPct
}
