package overview

import (
	"sort"
	"time"

	"github.com/Alias1177/volscan/models"
)

// DefaultTop is the default length of each ranking
const DefaultTop = 10

// Filters echoes the options an overview was built with
type Filters struct {
	QuoteAssets []string `json:"quote_assets"`
	Top         int      `json:"top"`
}

// Overview is the market-wide 24h snapshot of one exchange
type Overview struct {
	Exchange     string             `json:"exchange"`
	GeneratedAt  time.Time          `json:"generated_at"`
	TotalSymbols int                `json:"total_symbols"`
	TopVolume    []models.Ticker24h `json:"top_volume"`
	TopGainers   []models.Ticker24h `json:"top_gainers"`
	TopLosers    []models.Ticker24h `json:"top_losers"`
	Tickers      []models.Ticker24h `json:"tickers,omitempty"`
	Filters      Filters            `json:"filters"`
}

// Options for Build
type Options struct {
	Top         int
	QuoteAssets []string
	IncludeRaw  bool
}

// Build ranks tickers by quote volume and 24h change.
// Losers are listed worst first.
func Build(exchange string, tickers []models.Ticker24h, opts Options, now time.Time) *Overview {
	top := opts.Top
	if top < 0 {
		top = 0
	}

	byVolume := sortedCopy(tickers, func(a, b models.Ticker24h) bool { return a.QuoteVolume > b.QuoteVolume })
	byChange := sortedCopy(tickers, func(a, b models.Ticker24h) bool { return a.PriceChangePercent > b.PriceChangePercent })

	losers := make([]models.Ticker24h, 0, min(top, len(byChange)))
	for i := len(byChange) - 1; i >= 0 && len(losers) < top; i-- {
		losers = append(losers, byChange[i])
	}

	o := &Overview{
		Exchange:     exchange,
		GeneratedAt:  now,
		TotalSymbols: len(tickers),
		TopVolume:    head(byVolume, top),
		TopGainers:   head(byChange, top),
		TopLosers:    losers,
		Filters:      Filters{Top: opts.Top},
	}
	if opts.IncludeRaw {
		o.Tickers = tickers
	}
	if len(opts.QuoteAssets) > 0 {
		quotes := append([]string(nil), opts.QuoteAssets...)
		sort.Strings(quotes)
		o.Filters.QuoteAssets = quotes
	}
	return o
}

func sortedCopy(tickers []models.Ticker24h, less func(a, b models.Ticker24h) bool) []models.Ticker24h {
	out := append([]models.Ticker24h(nil), tickers...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func head(tickers []models.Ticker24h, n int) []models.Ticker24h {
	if n > len(tickers) {
		n = len(tickers)
	}
	return tickers[:n]
}
