package price

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// HTTPQuote adapts a generic JSON quote endpoint. The URL template gets the
// pair substituted for {pair}; QuotePath is a gjson path into the response,
// also with {pair} substitution (forex APIs commonly key rates by symbol).
//
// Example: URL "https://quotes.example/latest?symbol={pair}",
// path "rates.{pair}".
type HTTPQuote struct {
	URLTemplate string
	QuotePath   string
	Client      *http.Client
}

func NewHTTPQuote(urlTemplate, quotePath string, timeout time.Duration) *HTTPQuote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPQuote{
		URLTemplate: strings.TrimSpace(urlTemplate),
		QuotePath:   strings.TrimSpace(quotePath),
		Client:      &http.Client{Timeout: timeout},
	}
}

func (h *HTTPQuote) GetPrice(ctx context.Context, pair string) (float64, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" || h.URLTemplate == "" {
		return 0, fmt.Errorf("%w: quote endpoint not configured", ErrUnavailable)
	}
	url := strings.ReplaceAll(h.URLTemplate, "{pair}", pair)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, pair, err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, pair, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("%w: %s: status=%d", ErrUnavailable, pair, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, pair, err)
	}
	path := strings.ReplaceAll(h.QuotePath, "{pair}", pair)
	result := gjson.GetBytes(body, path)
	if !result.Exists() || result.Float() <= 0 {
		return 0, fmt.Errorf("%w: %s: no quote at path %q", ErrUnavailable, pair, path)
	}
	return result.Float(), nil
}
