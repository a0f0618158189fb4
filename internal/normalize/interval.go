package normalize

import (
	"strings"
)

// OKXInterval maps an interval token to OKX's bar parameter.
// Minute bars keep a lowercase "m"; everything else is uppercased, so "1M" stays a month.
func OKXInterval(interval string) string {
	interval = strings.TrimSpace(interval)
	if strings.HasSuffix(interval, "m") {
		return interval
	}
	return strings.ToUpper(interval)
}

// BinanceInterval maps an interval token to Binance's interval parameter.
// Binance is lowercase except the month token "M".
func BinanceInterval(interval string) string {
	interval = strings.TrimSpace(interval)
	if strings.HasSuffix(interval, "M") {
		return strings.ToLower(interval[:len(interval)-1]) + "M"
	}
	return strings.ToLower(interval)
}
