package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/volscan/internal/analyze"
	"github.com/Alias1177/volscan/internal/api"
	"github.com/Alias1177/volscan/internal/config"
	"github.com/Alias1177/volscan/internal/database"
	"github.com/Alias1177/volscan/internal/notify"
	"github.com/Alias1177/volscan/internal/snapshot"
	"github.com/Alias1177/volscan/internal/storage"
	"github.com/Alias1177/volscan/internal/summary"
	"github.com/Alias1177/volscan/models"
)

type options struct {
	exchange     string
	symbols      stringList
	intervals    stringList
	limit        int
	maxSymbols   int
	quote        string
	contractType string
	instType     string
	priceOnly    bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.exchange, "exchange", api.Binance, "exchange: binance or okx")
	flag.Var(&opts.symbols, "symbols", "symbols, comma separated or repeated, or ALL for every contract (default BTCUSDT)")
	flag.Var(&opts.intervals, "interval", "kline intervals, comma separated or repeated (default 1h)")
	flag.IntVar(&opts.limit, "limit", 0, "klines per request (default KLINE_LIMIT)")
	flag.IntVar(&opts.maxSymbols, "max-symbols", 0, "process at most this many symbols")
	flag.StringVar(&opts.quote, "quote", "", "keep only these quote assets when listing ALL, e.g. USDT,BUSD")
	flag.StringVar(&opts.contractType, "contract-type", "PERPETUAL", "binance contract type when listing ALL")
	flag.StringVar(&opts.instType, "inst-type", "SWAP", "okx instrument type when listing ALL")
	flag.BoolVar(&opts.priceOnly, "price-only", false, "only print the current price of each symbol")
	flag.Parse()

	if len(opts.symbols) == 0 {
		opts.symbols = stringList{"BTCUSDT"}
	}
	if len(opts.intervals) == 0 {
		opts.intervals = stringList{"1h"}
	}
	return opts
}

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	setupSignalHandling(cancel)

	opts := parseFlags()

	setupLogging("info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	th, err := config.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load thresholds")
	}

	exchange, err := api.NewExchange(opts.exchange, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exchange client")
	}

	filter := models.SymbolFilter{Quote: opts.quote, ContractType: opts.contractType, InstType: opts.instType}
	symbols, err := resolveSymbols(ctx, exchange, opts.symbols, filter, opts.maxSymbols)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve symbols")
	}

	if opts.priceOnly {
		runPriceOnly(ctx, cfg, exchange, symbols)
		return
	}

	if opts.limit <= 0 {
		opts.limit = cfg.KlineLimit
	}

	r := &runner{
		exchange:   exchange.Name(),
		store:      storage.New(cfg.DataDir),
		thresholds: th,
	}

	if cfg.DatabaseEnabled() {
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DatabaseParams())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		r.db = db
	}

	if cfg.TelegramEnabled() {
		n, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, cfg.NotifyMinConclusion)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Telegram notifier")
		}
		r.notifier = n
	}

	tasks := snapshot.Tasks(symbols, splitList(opts.intervals, false))
	log.Info().Str("exchange", r.exchange).Int("tasks", len(tasks)).Msg("Starting fetch")

	results := snapshot.CollectAll(ctx, exchange, r.exchange, tasks,
		snapshot.Options{Limit: opts.limit, OrderBookDepth: cfg.OrderBookDepth},
		func(p *models.Payload) error { return r.handle(ctx, p) })

	var failures []snapshot.Result
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, res)
		}
	}

	if len(failures) == len(results) {
		fmt.Fprintln(os.Stderr, "All tasks failed, check the parameters or the network.")
		os.Exit(1)
	}

	if len(results) > 1 {
		fmt.Printf("\nBatch finished: %d succeeded, %d failed.\n", len(results)-len(failures), len(failures))
		if len(failures) > 0 {
			fmt.Println("Failures:")
			for _, f := range failures {
				fmt.Printf("  - %s (%s): %v\n", f.Symbol, f.Interval, f.Err)
			}
		}
	}
}

type runner struct {
	exchange   string
	store      *storage.Store
	thresholds models.Thresholds
	db         *database.DB
	notifier   *notify.Notifier
}

// handle persists one snapshot and runs the optional archive and alert steps
func (r *runner) handle(ctx context.Context, p *models.Payload) error {
	path := r.store.OutputPath(r.exchange, p.Symbol, p.Interval, len(p.Klines))
	if err := r.store.Save(path, p); err != nil {
		return err
	}
	fmt.Printf("[%s - %s] wrote %s with %d klines, 24h ticker, funding rate, open interest, price and order book.\n",
		p.Symbol, p.Interval, path, len(p.Klines))

	if r.db == nil && r.notifier == nil {
		return nil
	}

	report := analyze.DetectVolatilityExpansion(p.Klines, p.Aux(), r.thresholds)

	if r.db != nil {
		s, err := summary.Build(p, r.thresholds)
		if err != nil {
			return err
		}
		row, err := database.NewReportRow(p, report, s, time.Now())
		if err != nil {
			return err
		}
		prev, err := r.db.LatestReport(ctx, r.exchange, p.Symbol, p.Interval)
		if err != nil {
			log.Warn().Err(err).Str("symbol", p.Symbol).Msg("Failed to read previous report")
		} else if changed, from := conclusionChanged(prev, report); changed {
			log.Info().Str("symbol", p.Symbol).Str("interval", p.Interval).
				Str("from", from).Str("to", report.Conclusion).Msg("Conclusion changed")
		}
		if err := r.db.SaveReport(ctx, row); err != nil {
			log.Error().Err(err).Str("symbol", p.Symbol).Msg("Failed to archive report")
		}
	}

	if r.notifier != nil {
		if _, err := r.notifier.Notify(r.exchange, p.Symbol, p.Interval, report); err != nil {
			log.Error().Err(err).Str("symbol", p.Symbol).Msg("Failed to send alert")
		}
	}

	return nil
}

// conclusionChanged compares a report with the previously archived one.
// A missing previous report counts as a change from no_signal.
func conclusionChanged(prev *models.SignalReport, cur models.SignalReport) (bool, string) {
	from := models.ConclusionNone
	if prev != nil && prev.Conclusion != "" {
		from = prev.Conclusion
	}
	to := cur.Conclusion
	if to == "" {
		to = models.ConclusionNone
	}
	return from != to, from
}

// runPriceOnly prints "SYMBOL: price" for every symbol
func runPriceOnly(ctx context.Context, cfg *config.Config, exchange models.Exchange, symbols []string) {
	clients := map[string]models.MarketClient{exchange.Name(): exchange}
	var mu sync.Mutex

	clientFor := func(symbol string) (models.MarketClient, error) {
		name := exchange.Name()
		if name == api.Binance {
			name = api.DetectExchange(symbol)
		}
		mu.Lock()
		defer mu.Unlock()
		if c, ok := clients[name]; ok {
			return c, nil
		}
		c, err := api.NewExchange(name, cfg)
		if err != nil {
			return nil, err
		}
		clients[name] = c
		return c, nil
	}

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			client, err := clientFor(symbol)
			if err == nil {
				var price *models.CurrentPrice
				if price, err = client.CurrentPrice(ctx, symbol); err == nil {
					fmt.Printf("%s: %s\n", price.Symbol, strconv.FormatFloat(price.Price, 'f', -1, 64))
					return
				}
			}
			fmt.Fprintf(os.Stderr, "[%s] failed to fetch price: %v\n", symbol, err)
		}(symbol)
	}
	wg.Wait()
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
