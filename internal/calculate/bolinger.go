package calculate

import (
	"math"
)

// calculateVolatility returns the population standard deviation of the trailing
// period closes and the same value as a percentage of their mean.
func calculateVolatility(closes []float64, period int) (vol, volPct []*float64) {
	vol = make([]*float64, len(closes))
	volPct = make([]*float64, len(closes))
	if len(closes) < period {
		return vol, volPct
	}

	for i := period - 1; i < len(closes); i++ {
		window := closes[i-period+1 : i+1]
		middle := calculateAverage(window)

		var variance float64
		for _, c := range window {
			variance += math.Pow(c-middle, 2)
		}
		sd := math.Sqrt(variance / float64(period))

		vol[i] = round(sd, pricePlaces)
		if middle > 0 {
			volPct[i] = round(sd/middle*100, pctPlaces)
		}
	}
	return vol, volPct
}
