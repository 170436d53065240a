package cache

import (
	"context"
	"fmt"
	"time"

	"metastor/internal/plans"

	"github.com/rs/zerolog"
)

const priceKey = "oracle:price"

type cachedPrice struct {
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CachedOracle serves the last fetched price from redis and goes to the
// upstream oracle only when the entry has expired.
type CachedOracle struct {
	cache    *Cache
	upstream plans.PriceOracle
	ttl      time.Duration
	log      zerolog.Logger
}

func NewCachedOracle(c *Cache, upstream plans.PriceOracle, ttl time.Duration, log zerolog.Logger) *CachedOracle {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedOracle{
		cache:    c,
		upstream: upstream,
		ttl:      ttl,
		log:      log.With().Str("component", "price_cache").Logger(),
	}
}

func (o *CachedOracle) Price(ctx context.Context) (float64, error) {
	var cp cachedPrice
	found, err := o.cache.Get(ctx, priceKey, &cp)
	if err != nil {
		o.log.Warn().Err(err).Msg("failed to read cached oracle price")
	}
	if err == nil && found && cp.Price > 0 {
		return cp.Price, nil
	}
	return o.Refresh(ctx)
}

// Refresh fetches from upstream and stores the result.
func (o *CachedOracle) Refresh(ctx context.Context) (float64, error) {
	price, err := o.upstream.Price(ctx)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		return 0, fmt.Errorf("upstream returned non-positive price %v", price)
	}
	// the fresh price is still served when the write fails
	if err := o.cache.Set(ctx, priceKey, cachedPrice{Price: price, FetchedAt: time.Now()}, o.ttl); err != nil {
		o.log.Warn().Err(err).Float64("price", price).Msg("failed to cache oracle price")
	}
	return price, nil
}
