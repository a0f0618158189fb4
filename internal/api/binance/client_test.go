package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Alias1177/volscan/internal/normalize"
	"github.com/Alias1177/volscan/models"
)

var _ models.Exchange = (*Client)(nil)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/klines", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1h" || r.URL.Query().Get("symbol") != "BTCUSDT" {
			http.Error(w, "bad params", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[[1000,"1","2","0.5","1.5","10",1999,"15",7],[2000,"1.5","2.5","1","2","12",2999,"24",9]]`))
	})
	mux.HandleFunc("/fapi/v1/premiumIndex", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","markPrice":"100.1","indexPrice":"100.0","lastFundingRate":"0.00070000","nextFundingTime":1700000000000}`))
	})
	mux.HandleFunc("/fapi/v1/depth", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lastUpdateId":7,"bids":[["100","5"]],"asks":[["101","1"],["102"]]}`))
	})
	mux.HandleFunc("/fapi/v1/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[{"symbol":"BTCUSDT","contractType":"PERPETUAL","status":"TRADING","quoteAsset":"USDT"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(ClientOptions{BaseURL: srv.URL})
	ctx := context.Background()

	candles, err := c.Klines(ctx, "btcusdt", "1H", 2)
	if err != nil {
		t.Fatalf("Klines() error = %v", err)
	}
	if len(candles) != 2 || candles[0].OpenTime != 2000 {
		t.Errorf("Klines() = %+v", candles)
	}

	fr, err := c.FundingRate(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("FundingRate() error = %v", err)
	}
	if fr.LastFundingRate != 0.0007 || fr.NextFundingTime != 1700000000000 {
		t.Errorf("FundingRate() = %+v", fr)
	}

	if _, err := c.OrderBook(ctx, "BTCUSDT", 20); !errors.Is(err, normalize.ErrMalformedData) {
		t.Errorf("OrderBook() error = %v, want ErrMalformedData", err)
	}

	symbols, err := c.Symbols(ctx, models.SymbolFilter{Quote: "USDT", ContractType: "PERPETUAL"})
	if err != nil || len(symbols) != 1 {
		t.Errorf("Symbols() = %v, %v", symbols, err)
	}
}
