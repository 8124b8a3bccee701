// Package source adapts the external signal generator endpoint into
// schema-validated candidate batches.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fxsentry/internal/signal"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 4 << 20

// Client fetches candidate signals over HTTP.
type Client struct {
	URL    string
	HTTP   *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		URL:  strings.TrimSpace(url),
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Fetch pulls a candidate batch. An empty batch is not an error. Any
// malformed payload rejects the whole batch (fail closed).
func (c *Client) Fetch(ctx context.Context) ([]signal.Candidate, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("signal source url not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signal source fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("signal source status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("signal source read failed: %w", err)
	}
	return Decode(body)
}

// Decode extracts, validates and normalizes a candidate batch from a raw
// response body. Accepted shapes: a bare JSON array, an object with a
// "signals" array, or free text containing exactly one array.
func Decode(body []byte) ([]signal.Candidate, error) {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return nil, nil
	}

	arr := raw
	if gjson.Valid(raw) {
		parsed := gjson.Parse(raw)
		if parsed.IsObject() {
			sig := parsed.Get("signals")
			if !sig.Exists() {
				return nil, fmt.Errorf("%w: response object has no signals field", signal.ErrInvalidCandidate)
			}
			arr = sig.Raw
		}
	} else {
		found, ok := extractJSONArray(raw)
		if !ok {
			return nil, fmt.Errorf("%w: no JSON array in response", signal.ErrInvalidCandidate)
		}
		arr = found
	}

	var doc any
	if err := json.Unmarshal([]byte(arr), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", signal.ErrInvalidCandidate, err)
	}
	if err := validateBatch(doc); err != nil {
		return nil, fmt.Errorf("%w: schema: %v", signal.ErrInvalidCandidate, err)
	}

	var wires []candidateWire
	if err := json.Unmarshal([]byte(arr), &wires); err != nil {
		return nil, fmt.Errorf("%w: %v", signal.ErrInvalidCandidate, err)
	}
	out := make([]signal.Candidate, 0, len(wires))
	for i, w := range wires {
		c, err := w.toCandidate()
		if err != nil {
			return nil, fmt.Errorf("candidate #%d: %w", i+1, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// candidateWire mirrors the generator's field names, old and new.
type candidateWire struct {
	Pair            string   `json:"pair"`
	TrendDirection  string   `json:"trend_direction"`
	Direction       string   `json:"direction"`
	ConfidenceLevel *float64 `json:"confidence_level"`
	Confidence      *float64 `json:"confidence"`
	Reason          string   `json:"reason"`
	EntryPrice      float64  `json:"entry_price"`
	TakeProfit      *float64 `json:"take_profit"`
	StopLoss        *float64 `json:"stop_loss"`
}

func (w candidateWire) toCandidate() (signal.Candidate, error) {
	dir, err := signal.ParseDirection(directionField(w.TrendDirection, w.Direction))
	if err != nil {
		return signal.Candidate{}, err
	}
	conf := 0.0
	switch {
	case w.ConfidenceLevel != nil:
		conf = *w.ConfidenceLevel
	case w.Confidence != nil:
		conf = *w.Confidence
	}
	raw, _ := json.Marshal(w)
	c := signal.Candidate{
		Pair:       strings.ToUpper(strings.TrimSpace(w.Pair)),
		Direction:  dir,
		Confidence: conf,
		Reason:     w.Reason,
		EntryPrice: w.EntryPrice,
		TakeProfit: w.TakeProfit,
		StopLoss:   w.StopLoss,
		Raw:        raw,
	}
	if err := c.Validate(); err != nil {
		return signal.Candidate{}, err
	}
	return c, nil
}
