package main

import (
	"context"
	"errors"
	"strings"

	"github.com/Alias1177/volscan/models"
)

// splitList splits comma and space separated values, keeping first occurrences only
func splitList(values []string, upper bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		for _, part := range strings.Fields(strings.ReplaceAll(v, ",", " ")) {
			if upper {
				part = strings.ToUpper(part)
			}
			if seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// resolveSymbols expands ALL through the exchange listing and applies the max-symbols cap
func resolveSymbols(ctx context.Context, lister models.MarketLister, raw []string, filter models.SymbolFilter, maxSymbols int) ([]string, error) {
	candidates := splitList(raw, true)
	if len(candidates) == 0 {
		return nil, errors.New("no symbols given, use --symbols with at least one symbol or ALL")
	}

	symbols := candidates
	for _, s := range candidates {
		if s == "ALL" {
			listed, err := lister.Symbols(ctx, filter)
			if err != nil {
				return nil, err
			}
			symbols = listed
			break
		}
	}

	if maxSymbols > 0 && len(symbols) > maxSymbols {
		symbols = symbols[:maxSymbols]
	}
	return symbols, nil
}

// stringList is a repeatable flag value
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
