package analyze

import "github.com/Alias1177/volscan/models"

// OrderBookImbalance returns (bid - ask) / (bid + ask) notional over the top depth
// levels of each side. ok is false without a book or when both sides are empty.
func OrderBookImbalance(book *models.OrderBook, depth int) (imbalance float64, ok bool) {
	if book == nil {
		return 0, false
	}

	bid := notional(book.Bids, depth)
	ask := notional(book.Asks, depth)
	total := bid + ask
	if total <= 0 {
		return 0, false
	}
	return (bid - ask) / total, true
}

func notional(levels []models.PriceLevel, depth int) float64 {
	if depth > 0 && len(levels) > depth {
		levels = levels[:depth]
	}
	var sum float64
	for _, l := range levels {
		sum += l.Price() * l.Quantity()
	}
	return sum
}
