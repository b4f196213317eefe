package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/redis"
)

// ErrPriceUnavailable is returned when no USD price is known for a currency
var ErrPriceUnavailable = errors.New("price unavailable")

// Oracle supplies USD spot prices
type Oracle interface {
	SpotPrice(ctx context.Context, currency string) (decimal.Decimal, error)
}

// StaticOracle serves a fixed price table
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

func NewStaticOracle(prices map[string]decimal.Decimal) *StaticOracle {
	table := make(map[string]decimal.Decimal, len(prices))
	for k, v := range prices {
		table[strings.ToUpper(k)] = v
	}
	return &StaticOracle{prices: table}
}

func (o *StaticOracle) SpotPrice(_ context.Context, currency string) (decimal.Decimal, error) {
	p, ok := o.prices[strings.ToUpper(currency)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrPriceUnavailable, currency)
	}
	return p, nil
}

// Cache is the key/value store backing CachedOracle
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedOracle reads through a TTL cache. Cache failures fall back to the source.
type CachedOracle struct {
	source Oracle
	cache  Cache
	ttl    time.Duration
}

func NewCachedOracle(source Oracle, cache Cache, ttl time.Duration) *CachedOracle {
	return &CachedOracle{source: source, cache: cache, ttl: ttl}
}

func (o *CachedOracle) SpotPrice(ctx context.Context, currency string) (decimal.Decimal, error) {
	key := strings.ToUpper(currency)

	raw, err := o.cache.Get(ctx, key)
	switch {
	case err == nil:
		if p, perr := decimal.NewFromString(raw); perr == nil {
			return p, nil
		}
		logger.Warn(ctx, "Discarding malformed cached price", zap.String("currency", key))
	case !errors.Is(err, redis.ErrCacheMiss):
		logger.Warn(ctx, "Price cache read failed", zap.String("currency", key), zap.Error(err))
	}

	p, err := o.source.SpotPrice(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if err := o.cache.Set(ctx, key, p.String(), o.ttl); err != nil {
		logger.Warn(ctx, "Price cache write failed", zap.String("currency", key), zap.Error(err))
	}
	return p, nil
}
