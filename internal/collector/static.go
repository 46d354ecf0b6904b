package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StaticFetcher returns controllable fixed prices for development and testing.
type StaticFetcher struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

func NewStaticFetcher(prices map[string]float64) *StaticFetcher {
	f := &StaticFetcher{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
	for sym, p := range prices {
		f.prices[strings.ToUpper(sym)] = p
	}
	return f
}

func (f *StaticFetcher) Name() string { return "static" }

// SetPrice changes the price returned for symbol.
func (f *StaticFetcher) SetPrice(symbol string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[strings.ToUpper(symbol)] = price
}

// Fail makes every fetch of symbol return err.
func (f *StaticFetcher) Fail(symbol string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[strings.ToUpper(symbol)] = err
}

// Calls reports how often symbol was fetched.
func (f *StaticFetcher) Calls(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[strings.ToUpper(symbol)]
}

func (f *StaticFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sym := strings.ToUpper(symbol)
	f.calls[sym]++
	if err := f.errs[sym]; err != nil {
		return 0, err
	}
	p, ok := f.prices[sym]
	if !ok {
		return 0, fmt.Errorf("static %s: %w", sym, ErrNoPrice)
	}
	return p, nil
}
