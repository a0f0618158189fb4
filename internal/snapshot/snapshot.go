package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/volscan/internal/calculate"
	"github.com/Alias1177/volscan/models"
)

// ErrNoKlines is returned when the exchange answers with an empty candle list
var ErrNoKlines = errors.New("no klines returned, check the symbol and parameters")

// Options tune a snapshot
type Options struct {
	Limit          int
	OrderBookDepth int
}

// DefaultOptions mirror the fetcher defaults
func DefaultOptions() Options {
	return Options{Limit: 100, OrderBookDepth: 20}
}

// Collect fetches klines and every auxiliary snapshot of one symbol/interval in parallel
// and enriches the klines. Any failed fetch fails the whole snapshot.
func Collect(ctx context.Context, client models.MarketClient, exchange, symbol, interval string, opts Options) (*models.Payload, error) {
	p := &models.Payload{Exchange: exchange, Symbol: symbol, Interval: interval}
	var candles []models.Candle

	// Use a waitgroup to fetch data in parallel
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fetch := func(name string, f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to fetch %s: %w", name, err)
				}
				mu.Unlock()
			}
		}()
	}

	fetch("klines", func() (err error) {
		candles, err = client.Klines(ctx, symbol, interval, opts.Limit)
		return err
	})
	fetch("ticker", func() (err error) {
		p.Ticker24h, err = client.Ticker24h(ctx, symbol)
		return err
	})
	fetch("funding rate", func() (err error) {
		p.FundingRate, err = client.FundingRate(ctx, symbol)
		return err
	})
	fetch("open interest", func() (err error) {
		p.OpenInterest, err = client.OpenInterest(ctx, symbol)
		return err
	})
	fetch("current price", func() (err error) {
		p.CurrentPrice, err = client.CurrentPrice(ctx, symbol)
		return err
	})
	fetch("order book", func() (err error) {
		p.OrderBook, err = client.OrderBook(ctx, symbol, opts.OrderBookDepth)
		return err
	})

	// Wait for all goroutines to complete
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if len(candles) == 0 {
		return nil, ErrNoKlines
	}

	p.Klines = calculate.Enrich(candles)
	return p, nil
}

// Task is one symbol/interval pair of a batch
type Task struct {
	Symbol   string
	Interval string
}

// Result reports the outcome of one task
type Result struct {
	Task
	Payload *models.Payload
	Err     error
}

// Tasks builds the symbol x interval cross product
func Tasks(symbols, intervals []string) []Task {
	tasks := make([]Task, 0, len(symbols)*len(intervals))
	for _, s := range symbols {
		for _, i := range intervals {
			tasks = append(tasks, Task{Symbol: s, Interval: i})
		}
	}
	return tasks
}

// CollectAll runs every task concurrently and hands each successful payload to handle.
// Results are returned in task order. The exchange client bounds the real request concurrency.
func CollectAll(ctx context.Context, client models.MarketClient, exchange string, tasks []Task, opts Options,
	handle func(*models.Payload) error) []Result {
	logger := log.With().Str("component", "snapshot").Str("exchange", exchange).Logger()

	results := make([]Result, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()

			res := Result{Task: task}
			res.Payload, res.Err = Collect(ctx, client, exchange, task.Symbol, task.Interval, opts)
			if res.Err == nil && handle != nil {
				res.Err = handle(res.Payload)
			}

			if res.Err != nil {
				logger.Error().Err(res.Err).Str("symbol", task.Symbol).Str("interval", task.Interval).Msg("Snapshot failed")
			} else {
				logger.Info().Str("symbol", task.Symbol).Str("interval", task.Interval).
					Int("klines", len(res.Payload.Klines)).Msg("Snapshot collected")
			}
			results[i] = res
		}(i, task)
	}
	wg.Wait()

	return results
}
