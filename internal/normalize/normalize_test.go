package normalize

import (
	"errors"
	"testing"
)

func TestBinanceKlinesReversedToRecentFirst(t *testing.T) {
	body := []byte(`[
		[1000, "1.0", "2.0", "0.5", "1.5", "10", 1999, "15", 7, "0", "0", "0"],
		[2000, "1.5", "2.5", "1.0", "2.0", "12", 2999, "24", 9, "0", "0", "0"],
		[3000, "2.0", "3.0", "1.5", "2.5", "14", 3999, "35", 11, "0", "0", "0"]
	]`)

	candles, err := BinanceKlines("btcusdt", body)
	if err != nil {
		t.Fatalf("BinanceKlines() error = %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("BinanceKlines() len = %d, want 3", len(candles))
	}
	if candles[0].OpenTime != 3000 || candles[2].OpenTime != 1000 {
		t.Errorf("BinanceKlines() order = %d..%d, want 3000..1000", candles[0].OpenTime, candles[2].OpenTime)
	}
	c := candles[0]
	if c.Symbol != "BTCUSDT" || c.Close != 2.5 || c.CloseTime != 3999 || c.QuoteVolume != 35 || c.Trades != 11 {
		t.Errorf("BinanceKlines() latest = %+v", c)
	}
}

func TestOKXKlinesKeepOrderAndDeriveCloseTime(t *testing.T) {
	body := []byte(`{"code":"0","msg":"","data":[
		["7200000","2","3","1","2.5","14","35","11.0","1"],
		["3600000","1.5","2.5","1","2","12","24","9","1"],
		["0","1","2","0.5","1.5","10","15","7","1"]
	]}`)

	candles, err := OKXKlines("BTC-USDT-SWAP", "1h", body)
	if err != nil {
		t.Fatalf("OKXKlines() error = %v", err)
	}
	if candles[0].OpenTime != 7200000 || candles[2].OpenTime != 0 {
		t.Errorf("OKXKlines() order = %d..%d", candles[0].OpenTime, candles[2].OpenTime)
	}
	if candles[0].CloseTime != 7200000+3600000-1 {
		t.Errorf("OKXKlines() close_time = %d, want %d", candles[0].CloseTime, 7200000+3600000-1)
	}
	if candles[0].QuoteVolume != 35 || candles[0].Trades != 11 {
		t.Errorf("OKXKlines() latest = %+v", candles[0])
	}

	unknown, err := OKXKlines("BTC-USDT-SWAP", "weird", body)
	if err != nil {
		t.Fatalf("OKXKlines() error = %v", err)
	}
	if unknown[0].CloseTime != 7200001 {
		t.Errorf("OKXKlines() placeholder close_time = %d, want 7200001", unknown[0].CloseTime)
	}
}

func TestKlinesSortedWhenUpstreamReordered(t *testing.T) {
	body := []byte(`{"code":"0","data":[
		["3600000","1","1","1","1","1","1","1"],
		["7200000","1","1","1","1","1","1","1"],
		["0","1","1","1","1","1","1","1"]
	]}`)

	candles, err := OKXKlines("X", "1h", body)
	if err != nil {
		t.Fatalf("OKXKlines() error = %v", err)
	}
	for i := 1; i < len(candles); i++ {
		if candles[i].OpenTime >= candles[i-1].OpenTime {
			t.Fatalf("OKXKlines() not strictly decreasing at %d", i)
		}
	}
}

func TestKlinesMalformed(t *testing.T) {
	tests := []struct {
		name  string
		run   func() error
		index int
	}{
		{
			name: "binance short entry",
			run: func() error {
				_, err := BinanceKlines("X", []byte(`[[1000,"1","1","1","1","1",1999,"1",1],[2000,"1","1"]]`))
				return err
			},
			index: 1,
		},
		{
			name: "binance entry not an array",
			run: func() error {
				_, err := BinanceKlines("X", []byte(`[{"open":1}]`))
				return err
			},
			index: 0,
		},
		{
			name: "binance unparseable close",
			run: func() error {
				_, err := BinanceKlines("X", []byte(`[[1000,"1","1","1","abc","1",1999,"1",1]]`))
				return err
			},
			index: 0,
		},
		{
			name: "okx seven fields",
			run: func() error {
				_, err := OKXKlines("X", "1m", []byte(`{"code":"0","data":[["0","1","1","1","1","1","1"]]}`))
				return err
			},
			index: 0,
		},
		{
			name: "duplicate open time",
			run: func() error {
				_, err := BinanceKlines("X", []byte(`[[1000,"1","1","1","1","1",1999,"1",1],[1000,"1","1","1","1","1",1999,"1",1]]`))
				return err
			},
			index: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, ErrMalformedData) {
				t.Fatalf("error = %v, want ErrMalformedData", err)
			}
			var mde *MalformedDataError
			if !errors.As(err, &mde) {
				t.Fatalf("error %T is not *MalformedDataError", err)
			}
			if mde.Index != tt.index {
				t.Errorf("Index = %d, want %d", mde.Index, tt.index)
			}
		})
	}
}

func TestOKXEnvelopeErrors(t *testing.T) {
	_, err := OKXFundingRate("BTC-USDT", []byte(`{"code":"51001","msg":"Instrument ID does not exist","data":[]}`))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "51001" {
		t.Errorf("OKXFundingRate() error = %v, want APIError 51001", err)
	}

	_, err = OKXOpenInterest("BTC-USDT", []byte(`{"code":"0","msg":"","data":[]}`))
	if !errors.Is(err, ErrMalformedData) {
		t.Errorf("OKXOpenInterest() error = %v, want ErrMalformedData", err)
	}
}

func TestIntervalReconciliation(t *testing.T) {
	tests := []struct {
		in      string
		okx     string
		binance string
	}{
		{"1m", "1m", "1m"},
		{"15m", "15m", "15m"},
		{"1h", "1H", "1h"},
		{"4H", "4H", "4h"},
		{"1d", "1D", "1d"},
		{"1w", "1W", "1w"},
		{"1M", "1M", "1M"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := OKXInterval(tt.in); got != tt.okx {
				t.Errorf("OKXInterval(%q) = %q, want %q", tt.in, got, tt.okx)
			}
			if got := BinanceInterval(tt.in); got != tt.binance {
				t.Errorf("BinanceInterval(%q) = %q, want %q", tt.in, got, tt.binance)
			}
		})
	}
}

func TestOrderBookTotals(t *testing.T) {
	body := []byte(`{"lastUpdateId":42,"bids":[["100","0.1"],["99","0.2"]],"asks":[["101","0.3"]]}`)

	book, err := BinanceOrderBook("btcusdt", body)
	if err != nil {
		t.Fatalf("BinanceOrderBook() error = %v", err)
	}
	if book.BidTotalQty != 0.3 {
		t.Errorf("BidTotalQty = %v, want 0.3", book.BidTotalQty)
	}
	if book.AskTotalQty != 0.3 || book.LastUpdateID != 42 || book.Symbol != "BTCUSDT" {
		t.Errorf("BinanceOrderBook() = %+v", book)
	}

	_, err = BinanceOrderBook("btcusdt", []byte(`{"bids":[["100"]],"asks":[]}`))
	if !errors.Is(err, ErrMalformedData) {
		t.Errorf("single-field level error = %v, want ErrMalformedData", err)
	}

	okxBook, err := OKXOrderBook("BTC-USDT-SWAP", []byte(`{"code":"0","data":[{"bids":[["100","2","0","1"]],"asks":[["101","3","0","2"]],"ts":"1700000000000"}]}`))
	if err != nil {
		t.Fatalf("OKXOrderBook() error = %v", err)
	}
	if okxBook.LastUpdateID != 1700000000000 || okxBook.AskTotalQty != 3 {
		t.Errorf("OKXOrderBook() = %+v", okxBook)
	}
}

func TestSnapshotsDefaultMissingFieldsToZero(t *testing.T) {
	fr, err := BinanceFundingRate("ethusdt", []byte(`{"lastFundingRate":"0.00070000"}`))
	if err != nil {
		t.Fatalf("BinanceFundingRate() error = %v", err)
	}
	if fr.Symbol != "ETHUSDT" || fr.LastFundingRate != 0.0007 || fr.NextFundingTime != 0 {
		t.Errorf("BinanceFundingRate() = %+v", fr)
	}

	ticker, err := OKXTicker24h("BTC-USDT-SWAP", []byte(`{"code":"0","data":[{"instId":"BTC-USDT-SWAP","last":"110","open24h":"100","high24h":"","low24h":"90"}]}`))
	if err != nil {
		t.Fatalf("OKXTicker24h() error = %v", err)
	}
	if ticker.PriceChangePercent != 10 || ticker.PriceChange != 10 || ticker.HighPrice != 0 {
		t.Errorf("OKXTicker24h() = %+v", ticker)
	}
}

func TestSymbolListings(t *testing.T) {
	info := []byte(`{"symbols":[
		{"symbol":"BTCUSDT","contractType":"PERPETUAL","status":"TRADING","quoteAsset":"USDT"},
		{"symbol":"BTCUSDC","contractType":"PERPETUAL","status":"TRADING","quoteAsset":"USDC"},
		{"symbol":"ETHUSDT_240628","contractType":"CURRENT_QUARTER","status":"TRADING","quoteAsset":"USDT"},
		{"symbol":"OLDUSDT","contractType":"PERPETUAL","status":"SETTLING","quoteAsset":"USDT"}
	]}`)

	symbols, err := BinanceSymbols(info, "PERPETUAL", "TRADING", ParseQuotes("usdt"))
	if err != nil {
		t.Fatalf("BinanceSymbols() error = %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "BTCUSDT" {
		t.Errorf("BinanceSymbols() = %v, want [BTCUSDT]", symbols)
	}

	instruments := []byte(`{"code":"0","data":[
		{"instId":"BTC-USDT-SWAP","state":"live"},
		{"instId":"BTC-USD-SWAP","state":"live"},
		{"instId":"ETH-USDT-SWAP","state":"suspend"}
	]}`)
	okxSymbols, err := OKXSymbols(instruments, "live", ParseQuotes("USDT"))
	if err != nil {
		t.Fatalf("OKXSymbols() error = %v", err)
	}
	if len(okxSymbols) != 1 || okxSymbols[0] != "BTC-USDT-SWAP" {
		t.Errorf("OKXSymbols() = %v", okxSymbols)
	}
}

func TestParseQuotes(t *testing.T) {
	if q := ParseQuotes("ALL"); q != nil {
		t.Errorf("ParseQuotes(ALL) = %v, want nil", q)
	}
	q := ParseQuotes(" usdt, busd ,")
	if len(q) != 2 || q[0] != "USDT" || q[1] != "BUSD" {
		t.Errorf("ParseQuotes() = %v", q)
	}
}

func TestTickerListsSkipBadEntries(t *testing.T) {
	body := []byte(`[
		{"symbol":"BTCUSDT","priceChangePercent":"2.5","quoteVolume":"1000"},
		{"symbol":"ETHBTC","priceChangePercent":"1.0"},
		{"symbol":"","priceChangePercent":"1.0"},
		{"symbol":"XRPUSDT","priceChangePercent":"oops"}
	]`)

	tickers, err := BinanceTickers(body, []string{"USDT"})
	if err != nil {
		t.Fatalf("BinanceTickers() error = %v", err)
	}
	if len(tickers) != 1 || tickers[0].Symbol != "BTCUSDT" || tickers[0].QuoteVolume != 1000 {
		t.Errorf("BinanceTickers() = %+v", tickers)
	}
}
