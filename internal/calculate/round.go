package calculate

import "github.com/shopspring/decimal"

const (
	pricePlaces  = 8
	pctPlaces    = 4
	changePlaces = 2
	rsiPlaces    = 2
)

// round rounds half away from zero on the shortest decimal form of v
func round(v float64, places int32) *float64 {
	r := Round(v, places)
	return &r
}

// Round is the rounding used for every derived number of the pipeline
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
