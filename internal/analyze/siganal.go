package analyze

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/volscan/internal/analysis/market"
	"github.com/Alias1177/volscan/models"
)

var conclusionTexts = map[string]string{
	models.ConclusionHigh:   "High probability: several signals stack up, a move from low to high volatility is likely",
	models.ConclusionMedium: "Medium probability: some transition signals are present and worth watching",
	models.ConclusionLow:    "Low probability: signals are weak and need confirmation",
	models.ConclusionNone:   "No clear signal: the market looks stable and a transition is unlikely",
}

// ConclusionText returns the human-readable sentence for a conclusion bucket
func ConclusionText(conclusion string) string {
	return conclusionTexts[conclusion]
}

// DetectVolatilityExpansion scores how likely the market is to move from low to high volatility.
// Each rule fires at most once and adds its weight to the total strength.
func DetectVolatilityExpansion(candles []models.EnrichedCandle, aux models.Auxiliary, th models.Thresholds) models.SignalReport {
	dt := th.Detector

	if len(candles) < dt.MinCandles {
		return models.SignalReport{
			Status:  models.StatusInsufficientData,
			Signals: []models.Signal{},
		}
	}

	regime := market.ClassifyVolatilityRegime(candles, th.Regime.Lookback, th.Regime)
	if regime.Status != models.StatusOK {
		return models.SignalReport{
			Status:  regime.Status,
			Signals: []models.Signal{},
		}
	}

	chrono := models.OldestFirst(candles)
	latest := chrono[len(chrono)-1]
	prev := chrono[len(chrono)-2]

	d := &detection{signals: []models.Signal{}}

	// 1. low volatility that has started to rise
	if regime.Regime == models.RegimeLow && regime.VolatilityTrend == models.TrendIncreasing {
		d.add(models.SignalVolatilityTrendReversal, dt.Weights.TrendReversal,
			"Volatility is low but has started to rise")
	}

	// 2. compressed volatility with a widening bar
	if regime.VolatilityPercentile < dt.CompressionPercentile {
		current := math.Abs(valueOrZero(latest.PriceChangePct))
		previous := math.Abs(valueOrZero(prev.PriceChangePct))
		if current > previous*dt.BreakoutRatio {
			d.add(models.SignalCompressionBreakout, dt.Weights.CompressionBreakout,
				fmt.Sprintf("Price breaking out of compressed volatility (change %.2f%% vs previous %.2f%%)", current, previous))
		}
	}

	// 3. volume against the recent mean, latest bar included
	window := dt.VolumeWindow
	if window > len(chrono) {
		window = len(chrono)
	}
	var volumeSum float64
	for _, c := range chrono[len(chrono)-window:] {
		volumeSum += c.Volume
	}
	avgVolume := volumeSum / float64(window)
	if latest.Volume > avgVolume*dt.VolumeRatio {
		d.add(models.SignalVolumeExpansion, dt.Weights.VolumeExpansion,
			fmt.Sprintf("Volume expanding (latest %.2f vs average %.2f)", latest.Volume, avgVolume))
	}

	// 4. RSI extremes
	if latest.RSI14 != nil {
		rsi := *latest.RSI14
		if rsi < dt.RSIOversold {
			d.add(models.SignalRSIOversold, dt.Weights.RSIExtreme,
				fmt.Sprintf("RSI oversold (%.2f), a rebound may bring volatility", rsi))
		} else if rsi > dt.RSIOverbought {
			d.add(models.SignalRSIOverbought, dt.Weights.RSIExtreme,
				fmt.Sprintf("RSI overbought (%.2f), a pullback may bring volatility", rsi))
		}
	}

	// 5. close crossing MA20
	if latest.MA20 != nil && *latest.MA20 != 0 {
		ma20 := *latest.MA20
		if prev.Close < ma20 && latest.Close > ma20 {
			d.add(models.SignalPriceBreakoutMA20, dt.Weights.MA20Cross,
				"Price broke above MA20")
		} else if prev.Close > ma20 && latest.Close < ma20 {
			d.add(models.SignalPriceBreakdownMA20, dt.Weights.MA20Cross,
				"Price broke below MA20")
		}
	}

	// 6. funding rate sentiment
	if aux.FundingRate != nil {
		funding := aux.FundingRate.LastFundingRate
		if math.Abs(funding) > dt.FundingRate {
			d.add(models.SignalExtremeFundingRate, dt.Weights.ExtremeFunding,
				fmt.Sprintf("Extreme funding rate (%.4f%%), a reverse move may follow", funding*100))
		}
	}

	// 7. point-in-time open interest; a trend needs history this package does not keep
	if aux.OpenInterest != nil && aux.OpenInterest.OpenInterest != 0 {
		d.add(models.SignalOpenInterestPresent, dt.Weights.OpenInterest,
			fmt.Sprintf("Open interest %g (needs historical trend to judge)", aux.OpenInterest.OpenInterest))
	}

	// 8. order book pressure, only when both sides are quoted
	if book := aux.OrderBook; book != nil && len(book.Bids) > 0 && len(book.Asks) > 0 {
		imbalance, ok := OrderBookImbalance(book, dt.OrderBookDepth)
		if ok && math.Abs(imbalance) > dt.ImbalanceRatio {
			side := "ask"
			if imbalance > 0 {
				side = "bid"
			}
			d.add(models.SignalOrderBookImbalance, dt.Weights.OrderBookImbalance,
				fmt.Sprintf("Order book imbalance (%s pressure %.1f%%)", side, math.Abs(imbalance)*100))
		}
	}

	// 9. market already active
	if aux.Ticker24h != nil {
		change := aux.Ticker24h.PriceChangePercent
		if math.Abs(change) > dt.Change24hPct {
			d.add(models.SignalHigh24hVolatility, dt.Weights.High24hChange,
				fmt.Sprintf("24h change %.2f%%, market is already active", change))
		}
	}

	conclusion := Conclude(d.strength, dt)

	log.Debug().
		Str("symbol", latest.Symbol).
		Int("signals", len(d.signals)).
		Int("strength", d.strength).
		Str("conclusion", conclusion).
		Msg("Volatility expansion detection complete")

	return models.SignalReport{
		Status:             models.StatusOK,
		VolatilityAnalysis: &regime,
		Signals:            d.signals,
		SignalStrength:     d.strength,
		Conclusion:         conclusion,
		ConclusionText:     ConclusionText(conclusion),
	}
}

// Conclude maps a total strength to its bucket, highest bucket first
func Conclude(strength int, dt models.DetectorThresholds) string {
	if strength >= dt.HighProbability {
		return models.ConclusionHigh
	} else if strength >= dt.MediumProbability {
		return models.ConclusionMedium
	} else if strength >= dt.LowProbability {
		return models.ConclusionLow
	}
	return models.ConclusionNone
}

// ConclusionRank orders conclusions from no_signal (0) to high_probability (3); unknown values rank -1
func ConclusionRank(conclusion string) int {
	switch conclusion {
	case models.ConclusionNone:
		return 0
	case models.ConclusionLow:
		return 1
	case models.ConclusionMedium:
		return 2
	case models.ConclusionHigh:
		return 3
	}
	return -1
}

type detection struct {
	signals  []models.Signal
	strength int
}

func (d *detection) add(signalType models.SignalType, strength int, description string) {
	d.signals = append(d.signals, models.Signal{Type: signalType, Description: description, Strength: strength})
	d.strength += strength
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
