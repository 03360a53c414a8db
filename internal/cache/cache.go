package cache

import (
	"context"
	"errors"
)

// CurrencyCache stores the provider's supported-currency list so the
// currencies endpoint does not hit the provider on every request.
type CurrencyCache interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, currencies []string) error
}

var ErrCacheMiss = errors.New("cache miss")
