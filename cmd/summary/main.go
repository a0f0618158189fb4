package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/volscan/internal/analyze"
	"github.com/Alias1177/volscan/internal/config"
	"github.com/Alias1177/volscan/internal/payload"
	"github.com/Alias1177/volscan/internal/summary"
	"github.com/Alias1177/volscan/models"
)

func main() {
	file := flag.String("file", "", "path to the fetcher JSON file to summarize (required)")
	asJSON := flag.Bool("json", false, "output JSON instead of formatted text")
	volatility := flag.Bool("volatility", false, "include the volatility expansion analysis")
	thresholds := flag.String("thresholds", os.Getenv("THRESHOLDS_FILE"), "optional YAML thresholds file")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	setupLogging(*logLevel)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		flag.Usage()
		os.Exit(2)
	}

	th, err := config.LoadThresholds(*thresholds)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load thresholds")
	}

	p, err := payload.Load(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read payload")
	}

	if err := run(os.Stdout, p, th, *asJSON, *volatility); err != nil {
		log.Fatal().Err(err).Msg("Failed to summarize")
	}
}

// run renders the summary and the optional volatility analysis to w
func run(w io.Writer, p *models.Payload, th models.Thresholds, asJSON, volatility bool) error {
	s, err := summary.Build(p, th)
	if err != nil {
		return err
	}

	var report *models.SignalReport
	if volatility {
		r := analyze.DetectVolatilityExpansion(p.Klines, p.Aux(), th)
		report = &r
	}

	if asJSON {
		out, err := json.MarshalIndent(summary.NewDocument(s, report), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	fmt.Fprintln(w, summary.FormatText(s))
	if report != nil {
		text, err := summary.FormatReport(*report)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, summary.VolatilityHeader())
		fmt.Fprintln(w, text)
	}
	return nil
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
