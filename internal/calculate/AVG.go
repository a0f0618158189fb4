package calculate

import (
	"github.com/cinar/indicator"
)

// calculateAverage calculates simple average
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

// movingAverage returns the trailing simple moving average of closes for every
// position from period-1 on; earlier positions are nil.
func movingAverage(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	if len(closes) < period {
		return out
	}

	sma := indicator.Sma(period, closes)
	for i := period - 1; i < len(closes); i++ {
		out[i] = round(sma[i], pricePlaces)
	}
	return out
}
