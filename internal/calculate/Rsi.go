package calculate

// calculateRSI computes the simple-average RSI at every position from period on,
// using the period deltas that end at that position. Earlier positions are nil.
func calculateRSI(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	if len(closes) < period+1 {
		return out
	}

	for i := period; i < len(closes); i++ {
		var gains, losses float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}

		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		if avgLoss == 0 {
			v := 100.0
			out[i] = &v
			continue
		}

		rs := avgGain / avgLoss
		out[i] = round(100.0-(100.0/(1.0+rs)), rsiPlaces)
	}

	return out
}
