package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/volscan/models"
)

// number decodes from a JSON number, a numeric string, an empty string or null.
// Exchanges mix all four for the same field.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	v, err := parseNumber(data)
	if err != nil {
		return err
	}
	*n = number(v)
	return nil
}

func parseNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		if s == "" {
			return 0, nil
		}
		raw = []byte(s)
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %s", raw)
	}
	return v, nil
}

func parseInteger(raw json.RawMessage) (int64, error) {
	trimmed := bytes.Trim(bytes.TrimSpace(raw), `"`)
	if i, err := strconv.ParseInt(string(trimmed), 10, 64); err == nil {
		return i, nil
	}
	v, err := parseNumber(raw)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// splitEntries decodes a JSON array of positional arrays
func splitEntries(source string, body []byte) ([][]json.RawMessage, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, malformed(source, -1, "expected an array: %v", err)
	}

	rows := make([][]json.RawMessage, len(entries))
	for i, entry := range entries {
		var fields []json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil {
			return nil, malformed(source, i, "entry is not an array")
		}
		rows[i] = fields
	}
	return rows, nil
}

// recentFirst verifies the sequence is strictly decreasing by open time and sorts it when
// an upstream reordered it. Duplicate open times are rejected.
func recentFirst(source string, candles []models.Candle) ([]models.Candle, error) {
	ordered := true
	for i := 1; i < len(candles); i++ {
		if candles[i].OpenTime >= candles[i-1].OpenTime {
			ordered = false
			break
		}
	}
	if ordered {
		return candles, nil
	}

	sort.SliceStable(candles, func(a, b int) bool {
		return candles[a].OpenTime > candles[b].OpenTime
	})
	for i := 1; i < len(candles); i++ {
		if candles[i].OpenTime == candles[i-1].OpenTime {
			return nil, malformed(source, i, "duplicate open_time %d", candles[i].OpenTime)
		}
	}
	return candles, nil
}

func reverse(candles []models.Candle) {
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
}

// parseLevels converts raw [price, quantity, ...] levels and returns their total quantity
func parseLevels(source, side string, raw [][]json.RawMessage) ([]models.PriceLevel, float64, error) {
	levels := make([]models.PriceLevel, 0, len(raw))
	total := decimal.Zero
	for i, level := range raw {
		if len(level) < 2 {
			return nil, 0, malformed(source, i, "%s level has %d fields, need 2", side, len(level))
		}
		price, err := parseNumber(level[0])
		if err != nil {
			return nil, 0, malformed(source, i, "%s price: %v", side, err)
		}
		qty, err := parseNumber(level[1])
		if err != nil {
			return nil, 0, malformed(source, i, "%s quantity: %v", side, err)
		}
		levels = append(levels, models.PriceLevel{price, qty})
		total = total.Add(decimal.NewFromFloat(qty))
	}
	return levels, total.Round(8).InexactFloat64(), nil
}
