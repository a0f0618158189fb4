package summary

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Alias1177/volscan/models"
)

var rule = strings.Repeat("=", 60)

// FormatText renders a Summary as the sectioned console report
func FormatText(s *models.Summary) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Symbol: %s\n", s.Symbol)
	b.WriteString(rule + "\n")

	b.WriteString("\n[PRICE]\n")
	fmt.Fprintf(&b, "Current: %s\n", num(s.CurrentPrice))
	if s.KlineClose != 0 && math.Abs(s.CurrentPrice-s.KlineClose) > 0.0001 {
		fmt.Fprintf(&b, "K-line Close: %s\n", num(s.KlineClose))
	}
	fmt.Fprintf(&b, "24h Change: %s%%\n", optional(s.Change24hPct))

	b.WriteString("\n[TECHNICAL INDICATORS]\n")
	fmt.Fprintf(&b, "RSI(14): %s\n", optional(s.RSI14))
	fmt.Fprintf(&b, "MA20: %s\n", optional(s.MA20))
	fmt.Fprintf(&b, "MA50: %s\n", optional(s.MA50))

	b.WriteString("\n[SIGNALS]\n")
	sig := s.Signals
	if sig.RSIStatus != nil {
		fmt.Fprintf(&b, "rsi_status: %s\n", *sig.RSIStatus)
		fmt.Fprintf(&b, "rsi_level: %s\n", *sig.RSILevel)
	}
	if sig.Trend != nil {
		fmt.Fprintf(&b, "price_vs_ma20_pct: %s\n", optional(sig.PriceVsMA20Pct))
		fmt.Fprintf(&b, "price_vs_ma50_pct: %s\n", optional(sig.PriceVsMA50Pct))
		fmt.Fprintf(&b, "ma20_vs_ma50_pct: %s\n", optional(sig.MA20VsMA50Pct))
		fmt.Fprintf(&b, "trend: %s\n", *sig.Trend)
	}
	fmt.Fprintf(&b, "volume_ratio: %s\n", num(sig.VolumeRatio))
	fmt.Fprintf(&b, "volume_status: %s\n", sig.VolumeStatus)

	b.WriteString("\n[MARKET DATA]\n")
	fmt.Fprintf(&b, "Funding Rate: %s\n", optional(s.FundingRate))
	fmt.Fprintf(&b, "Next Funding Time: %s\n", optionalInt(s.NextFundingTime))
	fmt.Fprintf(&b, "Open Interest: %s\n", optional(s.OpenInterest))
	if s.OrderBookImbalance != nil {
		fmt.Fprintf(&b, "Order Book Imbalance: %.4f\n", *s.OrderBookImbalance)
	} else {
		b.WriteString("Order Book Imbalance: null\n")
	}
	if s.ATR14 != nil && *s.ATR14 != 0 {
		fmt.Fprintf(&b, "ATR(14): %s\n", num(*s.ATR14))
	}
	if s.ATR14Pct != nil && *s.ATR14Pct != 0 {
		fmt.Fprintf(&b, "ATR(14) %%: %s%%\n", num(*s.ATR14Pct))
	}
	if s.Volatility20Pct != nil {
		fmt.Fprintf(&b, "Volatility(20) %%: %s%%\n", num(*s.Volatility20Pct))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatReport renders a SignalReport as indented JSON with sorted keys
func FormatReport(r models.SignalReport) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal signal report: %w", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("re-read signal report: %w", err)
	}

	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return "", fmt.Errorf("indent signal report: %w", err)
	}
	return string(out), nil
}

// VolatilityHeader introduces the volatility section of the text report
func VolatilityHeader() string {
	return "\n" + rule + "\n[VOLATILITY ANALYSIS]\n" + rule
}

// Document is the JSON output of the summary command
type Document struct {
	Summary            *models.Summary      `json:"summary"`
	VolatilityAnalysis *models.SignalReport `json:"volatility_analysis,omitempty"`
}

// NewDocument wraps a summary and an optional report
func NewDocument(s *models.Summary, report *models.SignalReport) Document {
	return Document{Summary: s, VolatilityAnalysis: report}
}
