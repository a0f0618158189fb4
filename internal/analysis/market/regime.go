package market

import (
	"fmt"

	"github.com/Alias1177/volscan/internal/calculate"
	"github.com/Alias1177/volscan/models"
)

// DefaultLookback is the number of latest candles the regime is measured against
const DefaultLookback = 20

// ClassifyVolatilityRegime places the latest candle's volatility within the recent history.
// The proxy is atr14_pct when the latest candle carries it, volatility_20_pct otherwise.
// Candles may be in any storage order; recency is taken from open time.
func ClassifyVolatilityRegime(candles []models.EnrichedCandle, lookback int, th models.RegimeThresholds) models.VolatilityRegime {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if len(candles) < lookback {
		return models.VolatilityRegime{
			Status:  models.StatusInsufficientData,
			Message: fmt.Sprintf("need at least %d candles, got %d", lookback, len(candles)),
		}
	}

	chrono := models.OldestFirst(candles)
	latest := chrono[len(chrono)-1]

	key, proxy := volatilityProxy(latest)
	if proxy == nil {
		return models.VolatilityRegime{
			Status:  models.StatusNoVolatilityData,
			Message: "latest candle carries no volatility indicator",
		}
	}

	window := proxyValues(chrono[len(chrono)-lookback:], proxy)
	if len(window) == 0 {
		return models.VolatilityRegime{
			Status:  models.StatusNoVolatilityData,
			Message: "no volatility values in the lookback window",
		}
	}

	current := *proxy(latest)
	maxVol, minVol := window[0], window[0]
	var sum float64
	var atOrBelow int
	for _, v := range window {
		sum += v
		if v > maxVol {
			maxVol = v
		}
		if v < minVol {
			minVol = v
		}
		if v <= current {
			atOrBelow++
		}
	}
	avg := sum / float64(len(window))
	percentile := float64(atOrBelow) / float64(len(window)) * 100

	regime := models.RegimeNormal
	if current < avg*th.LowRatio {
		regime = models.RegimeLow
	} else if current > avg*th.HighRatio {
		regime = models.RegimeHigh
	}

	trendWindow := th.TrendWindow
	if trendWindow > len(chrono) {
		trendWindow = len(chrono)
	}
	trend := models.TrendDecreasing
	recent := proxyValues(chrono[len(chrono)-trendWindow:], proxy)
	if len(recent) >= 2 && recent[len(recent)-1] > recent[0] {
		trend = models.TrendIncreasing
	}

	return models.VolatilityRegime{
		Status:               models.StatusOK,
		CurrentVolatility:    calculate.Round(current, 4),
		AverageVolatility:    calculate.Round(avg, 4),
		MaxVolatility:        calculate.Round(maxVol, 4),
		MinVolatility:        calculate.Round(minVol, 4),
		VolatilityPercentile: calculate.Round(percentile, 2),
		Regime:               regime,
		VolatilityTrend:      trend,
		VolatilityKey:        key,
	}
}

type proxyFunc func(models.EnrichedCandle) *float64

func atrPct(c models.EnrichedCandle) *float64 { return c.ATR14Pct }

func stdDevPct(c models.EnrichedCandle) *float64 { return c.Volatility20Pct }

// volatilityProxy picks the volatility field to measure; proxy is nil when the latest candle has neither
func volatilityProxy(latest models.EnrichedCandle) (string, proxyFunc) {
	if latest.ATR14Pct != nil {
		return models.VolatilityKeyATR, atrPct
	}
	if latest.Volatility20Pct != nil {
		return models.VolatilityKeyStdDev, stdDevPct
	}
	return "", nil
}

// proxyValues collects the present proxy values in chronological order
func proxyValues(candles []models.EnrichedCandle, proxy proxyFunc) []float64 {
	values := make([]float64, 0, len(candles))
	for _, c := range candles {
		if v := proxy(c); v != nil {
			values = append(values, *v)
		}
	}
	return values
}
