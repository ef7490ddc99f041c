// Package quotes fetches live stock prices.
package quotes

import (
	"context"
	"errors"
)

var (
	// ErrNoData means the upstream API answered but had no quote for the symbol.
	ErrNoData = errors.New("no data found for symbol")
	// ErrRateLimited means the upstream API refused the call because of its quota.
	ErrRateLimited = errors.New("quote api rate limit reached")
)

// Provider returns the current unit price for a ticker symbol.
type Provider interface {
	Price(ctx context.Context, symbol string) (float64, error)
}
