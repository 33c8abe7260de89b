package dedupe

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cachedKeysEntry = "keys"

// CachedSource memoizes a KeySource for a TTL so repeated runs in one
// process (the HTTP server) do not re-read the output sheet every time.
type CachedSource struct {
	src   KeySource
	cache *gocache.Cache
}

// NewCachedSource wraps src. A non-positive ttl disables expiry.
func NewCachedSource(src KeySource, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &CachedSource{
		src:   src,
		cache: gocache.New(ttl, 2*time.Minute),
	}
}

// Keys implements KeySource.
func (c *CachedSource) Keys(ctx context.Context) ([]string, error) {
	if v, found := c.cache.Get(cachedKeysEntry); found {
		return v.([]string), nil
	}
	keys, err := c.src.Keys(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(cachedKeysEntry, keys, gocache.DefaultExpiration)
	return keys, nil
}

// Add appends newly written keys to the cached snapshot, if one is held.
func (c *CachedSource) Add(keys ...string) {
	v, exp, found := c.cache.GetWithExpiration(cachedKeysEntry)
	if !found {
		return
	}
	merged := append(append([]string(nil), v.([]string)...), keys...)
	ttl := gocache.NoExpiration
	if !exp.IsZero() {
		ttl = time.Until(exp)
		if ttl <= 0 {
			c.cache.Delete(cachedKeysEntry)
			return
		}
	}
	c.cache.Set(cachedKeysEntry, merged, ttl)
}

// Invalidate drops the cached snapshot.
func (c *CachedSource) Invalidate() {
	c.cache.Delete(cachedKeysEntry)
}
