package service

import (
	"sync"
	"time"

	"walletguard/internal/entity"
)

// NativePriceCache is the single process-wide slot for the native currency
// price. It is shared by every worker; the clock is injectable so expiry can
// be unit-tested without sleeping.
type NativePriceCache struct {
	mu        sync.RWMutex
	quote     entity.PriceQuote
	populated bool
	ttl       time.Duration
	now       func() time.Time
}

// NewNativePriceCache creates an empty cache with the given TTL.
func NewNativePriceCache(ttl time.Duration) *NativePriceCache {
	return &NativePriceCache{ttl: ttl, now: time.Now}
}

// WithClock replaces the cache's clock. Test hook.
func (c *NativePriceCache) WithClock(now func() time.Time) *NativePriceCache {
	c.now = now
	return c
}

// Get returns the cached quote, or false when the slot was never populated or
// has expired. A fallback-sourced quote is served like any other until expiry;
// that keeps a failing primary source from being hammered during an outage.
func (c *NativePriceCache) Get() (entity.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.populated || c.now().Sub(c.quote.FetchedAt) >= c.ttl {
		return entity.PriceQuote{}, false
	}
	return c.quote, true
}

// Set stores a freshly resolved quote. Last write wins; concurrent refreshes
// converge on the same externally sourced value.
func (c *NativePriceCache) Set(priceUSD float64, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote = entity.PriceQuote{
		PriceUSD:  priceUSD,
		Source:    source,
		FetchedAt: c.now(),
	}
	c.populated = true
}
