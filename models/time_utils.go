package models

import (
	"sort"
	"strconv"
	"time"
)

// IntervalDuration converts an exchange interval token (1m, 5m, 1h, 1H, 4h, 1d, 1D, 1w, 1W, 1M)
// into a bar length. The second result is false for unknown tokens.
// Lowercase "m" is minutes, uppercase "M" is months.
func IntervalDuration(interval string) (time.Duration, bool) {
	if len(interval) < 2 {
		return 0, false
	}

	unit := interval[len(interval)-1]
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, false
	}

	switch unit {
	case 's':
		return time.Duration(n) * time.Second, true
	case 'm':
		return time.Duration(n) * time.Minute, true
	case 'h', 'H':
		return time.Duration(n) * time.Hour, true
	case 'd', 'D':
		return time.Duration(n) * 24 * time.Hour, true
	case 'w', 'W':
		return time.Duration(n) * 7 * 24 * time.Hour, true
	case 'M':
		// calendar months vary; 30 days is close enough for close-time estimates
		return time.Duration(n) * 30 * 24 * time.Hour, true
	}

	return 0, false
}

// Chronological returns the indices of candles ordered by ascending open time.
// The input is not modified.
func Chronological(candles []EnrichedCandle) []int {
	idx := make([]int, len(candles))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return candles[idx[a]].OpenTime < candles[idx[b]].OpenTime
	})
	return idx
}

// LatestCandle returns the candle with the greatest open time
func LatestCandle(candles []EnrichedCandle) (EnrichedCandle, bool) {
	if len(candles) == 0 {
		return EnrichedCandle{}, false
	}
	latest := 0
	for i := 1; i < len(candles); i++ {
		if candles[i].OpenTime > candles[latest].OpenTime {
			latest = i
		}
	}
	return candles[latest], true
}

// OldestFirst returns a copy of candles sorted by ascending open time
func OldestFirst(candles []EnrichedCandle) []EnrichedCandle {
	out := make([]EnrichedCandle, len(candles))
	for i, j := range Chronological(candles) {
		out[i] = candles[j]
	}
	return out
}
