package models

// RegimeThresholds drives the volatility regime classifier
type RegimeThresholds struct {
	Lookback    int     `yaml:"lookback" validate:"gt=0"`
	TrendWindow int     `yaml:"trend_window" validate:"gt=1"`
	LowRatio    float64 `yaml:"low_ratio" validate:"gt=0"`
	HighRatio   float64 `yaml:"high_ratio" validate:"gtfield=LowRatio"`
}

// SignalWeights is the strength each detector rule adds when it fires
type SignalWeights struct {
	TrendReversal       int `yaml:"trend_reversal" validate:"gte=0"`
	CompressionBreakout int `yaml:"compression_breakout" validate:"gte=0"`
	VolumeExpansion     int `yaml:"volume_expansion" validate:"gte=0"`
	RSIExtreme          int `yaml:"rsi_extreme" validate:"gte=0"`
	MA20Cross           int `yaml:"ma20_cross" validate:"gte=0"`
	ExtremeFunding      int `yaml:"extreme_funding" validate:"gte=0"`
	OpenInterest        int `yaml:"open_interest" validate:"gte=0"`
	OrderBookImbalance  int `yaml:"order_book_imbalance" validate:"gte=0"`
	High24hChange       int `yaml:"high_24h_change" validate:"gte=0"`
}

// DetectorThresholds drives the volatility expansion detector
type DetectorThresholds struct {
	MinCandles            int           `yaml:"min_candles" validate:"gt=0"`
	CompressionPercentile float64       `yaml:"compression_percentile"`
	BreakoutRatio         float64       `yaml:"breakout_ratio"`
	VolumeWindow          int           `yaml:"volume_window" validate:"gt=0"`
	VolumeRatio           float64       `yaml:"volume_ratio"`
	RSIOversold           float64       `yaml:"rsi_oversold"`
	RSIOverbought         float64       `yaml:"rsi_overbought"`
	FundingRate           float64       `yaml:"funding_rate"`
	OrderBookDepth        int           `yaml:"order_book_depth" validate:"gt=0"`
	ImbalanceRatio        float64       `yaml:"imbalance_ratio"`
	Change24hPct          float64       `yaml:"change_24h_pct"`
	Weights               SignalWeights `yaml:"weights"`
	HighProbability       int           `yaml:"high_probability"`
	MediumProbability     int           `yaml:"medium_probability"`
	LowProbability        int           `yaml:"low_probability"`
}

// SummaryThresholds drives the compact signal map of the summary
type SummaryThresholds struct {
	RSIExtremeOversold   float64 `yaml:"rsi_extreme_oversold"`
	RSIOversold          float64 `yaml:"rsi_oversold"`
	RSIBearish           float64 `yaml:"rsi_bearish"`
	RSIBullish           float64 `yaml:"rsi_bullish"`
	RSIOverbought        float64 `yaml:"rsi_overbought"`
	RSIExtremeOverbought float64 `yaml:"rsi_extreme_overbought"`
	VolumeLookback       int     `yaml:"volume_lookback" validate:"gt=0"`
	VolumeExtremeSpike   float64 `yaml:"volume_extreme_spike"`
	VolumeSpike          float64 `yaml:"volume_spike"`
	VolumeElevated       float64 `yaml:"volume_elevated"`
	VolumeLow            float64 `yaml:"volume_low"`
	OrderBookDepth       int     `yaml:"order_book_depth" validate:"gt=0"`
}

// Thresholds collects every rule constant of the analysis pipeline
type Thresholds struct {
	Regime   RegimeThresholds   `yaml:"regime"`
	Detector DetectorThresholds `yaml:"detector"`
	Summary  SummaryThresholds  `yaml:"summary"`
}

// DefaultThresholds returns the stock rule constants
func DefaultThresholds() Thresholds {
	return Thresholds{
		Regime: RegimeThresholds{
			Lookback:    20,
			TrendWindow: 5,
			LowRatio:    0.7,
			HighRatio:   1.3,
		},
		Detector: DetectorThresholds{
			MinCandles:            20,
			CompressionPercentile: 30,
			BreakoutRatio:         1.5,
			VolumeWindow:          5,
			VolumeRatio:           1.5,
			RSIOversold:           30,
			RSIOverbought:         70,
			FundingRate:           0.0005,
			OrderBookDepth:        10,
			ImbalanceRatio:        0.3,
			Change24hPct:          5,
			Weights: SignalWeights{
				TrendReversal:       2,
				CompressionBreakout: 3,
				VolumeExpansion:     2,
				RSIExtreme:          1,
				MA20Cross:           2,
				ExtremeFunding:      2,
				OpenInterest:        1,
				OrderBookImbalance:  2,
				High24hChange:       1,
			},
			HighProbability:   6,
			MediumProbability: 4,
			LowProbability:    2,
		},
		Summary: SummaryThresholds{
			RSIExtremeOversold:   20,
			RSIOversold:          30,
			RSIBearish:           30,
			RSIBullish:           50,
			RSIOverbought:        70,
			RSIExtremeOverbought: 80,
			VolumeLookback:       20,
			VolumeExtremeSpike:   3,
			VolumeSpike:          2,
			VolumeElevated:       1.5,
			VolumeLow:            0.5,
			OrderBookDepth:       10,
		},
	}
}
