package price

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
)

// Binance quotes crypto pairs (e.g. BTCUSDT) from the spot ticker API.
type Binance struct {
	client *binance.Client
}

// NewBinance builds an unauthenticated spot client; ticker endpoints are
// public. baseURL overrides the default host when non-empty.
func NewBinance(baseURL string, timeout time.Duration) *Binance {
	client := binance.NewClient("", "")
	if u := strings.TrimSpace(baseURL); u != "" {
		client.BaseURL = u
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &Binance{client: client}
}

func (b *Binance) GetPrice(ctx context.Context, pair string) (float64, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" {
		return 0, fmt.Errorf("%w: empty pair", ErrUnavailable)
	}
	prices, err := b.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, pair, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("%w: %s: empty ticker response", ErrUnavailable, pair)
	}
	v, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s: bad ticker price %q", ErrUnavailable, pair, prices[0].Price)
	}
	return v, nil
}
