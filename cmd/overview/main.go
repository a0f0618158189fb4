package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/volscan/internal/api"
	"github.com/Alias1177/volscan/internal/config"
	"github.com/Alias1177/volscan/internal/normalize"
	"github.com/Alias1177/volscan/internal/overview"
	"github.com/Alias1177/volscan/internal/storage"
	"github.com/Alias1177/volscan/models"
)

func main() {
	exchangeName := flag.String("exchange", api.Binance, "exchange: binance or okx")
	instType := flag.String("inst-type", "SWAP", "okx instrument type")
	quote := flag.String("quote", "USDT", "keep only these quote assets, comma separated, ALL disables the filter")
	top := flag.Int("top", overview.DefaultTop, "entries per ranking")
	includeRaw := flag.Bool("include-raw", false, "include every filtered ticker in the snapshot")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	setupLogging("info")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	exchange, err := api.NewExchange(*exchangeName, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exchange client")
	}

	tickers, err := exchange.Tickers(ctx, models.SymbolFilter{Quote: *quote, InstType: *instType})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch tickers")
	}

	o := overview.Build(exchange.Name(), tickers, overview.Options{
		Top:         *top,
		QuoteAssets: normalize.ParseQuotes(*quote),
		IncludeRaw:  *includeRaw,
	}, time.Now())

	store := storage.New(cfg.DataDir)
	path := store.SnapshotPath(exchange.Name())
	if err := store.SaveSnapshot(path, o, 1); err != nil {
		log.Fatal().Err(err).Msg("Failed to save snapshot")
	}

	fmt.Printf("Overview snapshot written to %s with %d symbols.\n", path, o.TotalSymbols)
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
