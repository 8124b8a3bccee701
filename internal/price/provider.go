// Package price resolves live quotes for trading pairs.
package price

import (
	"context"
	"errors"
)

// ErrUnavailable means the provider could not quote the pair right now.
// Callers treat it as a per-pair skip, never as a fatal condition.
var ErrUnavailable = errors.New("price unavailable")

// Provider fetches the current price for a pair.
type Provider interface {
	GetPrice(ctx context.Context, pair string) (float64, error)
}
