package collector

import (
	"sort"
	"strings"
	"sync"
	"time"

	"PortfolioTracker/internal/model"
)

// PriceCache maps symbols to their last quote with an explicit freshness
// window. It is safe for concurrent use.
type PriceCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
	quotes map[string]model.PriceQuote
}

// NewPriceCache creates a cache whose entries stay fresh for ttl. A nil clock
// uses time.Now.
func NewPriceCache(ttl time.Duration, clock func() time.Time) *PriceCache {
	if clock == nil {
		clock = time.Now
	}
	return &PriceCache{ttl: ttl, now: clock, quotes: make(map[string]model.PriceQuote)}
}

// TTL returns the freshness window.
func (c *PriceCache) TTL() time.Duration { return c.ttl }

// Get returns the quote for symbol regardless of its age.
func (c *PriceCache) Get(symbol string) (model.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[strings.ToUpper(symbol)]
	return q, ok
}

// Fresh returns the quote for symbol only if it is younger than the TTL.
func (c *PriceCache) Fresh(symbol string) (model.PriceQuote, bool) {
	q, ok := c.Get(symbol)
	if !ok || c.now().Sub(q.FetchedAt) >= c.ttl {
		return model.PriceQuote{}, false
	}
	return q, true
}

// Put stores quotes, keeping the newer one when a symbol is already present.
func (c *PriceCache) Put(quotes ...model.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range quotes {
		q.Symbol = strings.ToUpper(q.Symbol)
		if old, ok := c.quotes[q.Symbol]; ok && old.FetchedAt.After(q.FetchedAt) {
			continue
		}
		c.quotes[q.Symbol] = q
	}
}

// Clear drops every entry.
func (c *PriceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = make(map[string]model.PriceQuote)
}

// Snapshot returns all entries ordered by symbol.
func (c *PriceCache) Snapshot() []model.PriceQuote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.PriceQuote, 0, len(c.quotes))
	for _, q := range c.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
