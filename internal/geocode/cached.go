package geocode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ErlanBelekov/jobbee-api/internal/cache"
)

const cacheTTL = 24 * time.Hour

// Cached memoizes successful lookups in Redis. Misses and cache outages fall
// through to next.
type Cached struct {
	next  Geocoder
	cache *cache.Client
}

func NewCached(next Geocoder, c *cache.Client) *Cached {
	return &Cached{next: next, cache: c}
}

func (c *Cached) Geocode(ctx context.Context, address string) (Result, error) {
	key := "geocode:" + normalize(address)

	if b := c.cache.Get(ctx, key); b != nil {
		var r Result
		if err := json.Unmarshal(b, &r); err == nil {
			return r, nil
		}
	}

	r, err := c.next.Geocode(ctx, address)
	if err != nil {
		return Result{}, err
	}

	if b, err := json.Marshal(r); err == nil {
		c.cache.Set(ctx, key, b, cacheTTL)
	}
	return r, nil
}
