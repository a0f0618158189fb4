package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/Alias1177/volscan/internal/calculate"
	"github.com/Alias1177/volscan/models"
)

// ErrInvalidPayload is matched by every decode or validation failure
var ErrInvalidPayload = errors.New("invalid payload")

type rawKline struct {
	Symbol      string   `json:"symbol"`
	OpenTime    *int64   `json:"open_time" validate:"required"`
	Open        *float64 `json:"open" validate:"required"`
	High        *float64 `json:"high" validate:"required"`
	Low         *float64 `json:"low" validate:"required"`
	Close       *float64 `json:"close" validate:"required"`
	Volume      *float64 `json:"volume" validate:"required"`
	CloseTime   int64    `json:"close_time"`
	QuoteVolume float64  `json:"quote_volume"`
	Trades      int64    `json:"trades"`
}

type rawPayload struct {
	Exchange     string               `json:"exchange"`
	Symbol       string               `json:"symbol"`
	Interval     string               `json:"interval"`
	Klines       []rawKline           `json:"klines" validate:"dive"`
	Ticker24h    *models.Ticker24h    `json:"ticker_24hr"`
	FundingRate  *models.FundingRate  `json:"funding_rate"`
	OpenInterest *models.OpenInterest `json:"open_interest"`
	OrderBook    *models.OrderBook    `json:"order_book"`
	CurrentPrice *models.CurrentPrice `json:"current_price"`
}

var validate = validator.New()

// Decode reads a payload document, validates the minimum kline fields and recomputes
// every indicator from the raw OHLCV values. Indicator fields in the document are ignored.
func Decode(r io.Reader) (*models.Payload, error) {
	var raw rawPayload
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Errorf("%w: %s is %s", ErrInvalidPayload, fe.Namespace(), fe.Tag())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	candles := make([]models.Candle, len(raw.Klines))
	for i, k := range raw.Klines {
		candles[i] = models.Candle{
			Symbol:      k.Symbol,
			OpenTime:    *k.OpenTime,
			Open:        *k.Open,
			High:        *k.High,
			Low:         *k.Low,
			Close:       *k.Close,
			Volume:      *k.Volume,
			CloseTime:   k.CloseTime,
			QuoteVolume: k.QuoteVolume,
			Trades:      k.Trades,
		}
	}

	return &models.Payload{
		Exchange:     raw.Exchange,
		Symbol:       raw.Symbol,
		Interval:     raw.Interval,
		Klines:       calculate.Enrich(candles),
		Ticker24h:    raw.Ticker24h,
		FundingRate:  raw.FundingRate,
		OpenInterest: raw.OpenInterest,
		OrderBook:    raw.OrderBook,
		CurrentPrice: raw.CurrentPrice,
	}, nil
}

// Load decodes the payload file at path
func Load(path string) (*models.Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
