package collector

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/storage"
)

// Quotes is the price snapshot handed to the valuation engine.
type Quotes struct {
	Prices map[string]float64
	// Missing lists symbols no price could be obtained for. Their price is
	// the unknown sentinel.
	Missing []string
	// FetchedAt is the age of the oldest quote used.
	FetchedAt time.Time
}

// Collector resolves prices for a set of symbols through the cache and the fetcher.
type Collector struct {
	Fetcher     Fetcher
	Cache       *PriceCache
	Store       storage.QuoteStore // optional
	Concurrency int
	Log         zerolog.Logger

	mu     sync.Mutex
	warmed bool
}

// NewCollector creates a new Collector. store may be nil.
func NewCollector(fetcher Fetcher, cache *PriceCache, store storage.QuoteStore, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		Cache:       cache,
		Store:       store,
		Concurrency: 4,
		Log:         log,
	}
}

// Resolve returns a price for every symbol. Symbols whose lookup fails are
// reported at 0.0 and listed in Missing. The only error is ctx cancellation.
func (c *Collector) Resolve(ctx context.Context, symbols []string) (Quotes, error) {
	c.warm(ctx)

	out := Quotes{Prices: make(map[string]float64)}
	var used []model.PriceQuote
	var pending []string
	for _, sym := range dedupe(symbols) {
		if q, ok := c.Cache.Fresh(sym); ok {
			out.Prices[sym] = q.Price
			used = append(used, q)
			continue
		}
		pending = append(pending, sym)
	}

	fetched := make([]model.PriceQuote, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Concurrency, 1))
	for i, sym := range pending {
		g.Go(func() error {
			price, err := c.Fetcher.FetchCurrentPrice(gctx, sym)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				c.Log.Warn().Err(err).Str("symbol", sym).Str("source", c.Fetcher.Name()).Msg("price unavailable, using 0.0")
				return nil
			}
			if model.IsUnpriced(price) {
				c.Log.Warn().Str("symbol", sym).Str("source", c.Fetcher.Name()).Msg("empty price, using 0.0")
				return nil
			}
			fetched[i] = model.PriceQuote{Symbol: sym, Price: price, FetchedAt: c.Cache.now()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Quotes{}, err
	}

	var fresh []model.PriceQuote
	for i, sym := range pending {
		q := fetched[i]
		if q.Symbol == "" {
			out.Prices[sym] = model.UnknownPrice
			out.Missing = append(out.Missing, sym)
			continue
		}
		out.Prices[sym] = q.Price
		fresh = append(fresh, q)
	}
	used = append(used, fresh...)

	if len(fresh) > 0 {
		c.Cache.Put(fresh...)
		if c.Store != nil {
			if err := c.Store.SaveQuotes(ctx, fresh); err != nil {
				c.Log.Warn().Err(err).Msg("persist quotes failed")
			}
		}
	}

	sort.Strings(out.Missing)
	out.FetchedAt = c.Cache.now()
	for _, q := range used {
		if q.FetchedAt.Before(out.FetchedAt) {
			out.FetchedAt = q.FetchedAt
		}
	}
	c.Log.Debug().Int("symbols", len(out.Prices)).Int("fetched", len(pending)).Int("missing", len(out.Missing)).Msg("prices resolved")
	return out, nil
}

// Invalidate drops cached quotes so the next Resolve fetches everything.
func (c *Collector) Invalidate() {
	c.mu.Lock()
	c.warmed = true
	c.mu.Unlock()
	c.Cache.Clear()
	c.Log.Info().Msg("price cache cleared")
}

// warm loads persisted quotes into the cache once per process.
func (c *Collector) warm(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed || c.Store == nil {
		return
	}
	c.warmed = true
	quotes, err := c.Store.LoadQuotes(ctx)
	if err != nil {
		c.Log.Warn().Err(err).Msg("load persisted quotes failed")
		return
	}
	c.Cache.Put(quotes...)
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	var out []string
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
