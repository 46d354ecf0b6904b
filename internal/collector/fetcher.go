package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoPrice is returned when a source answers but has no usable price.
var ErrNoPrice = errors.New("no price data")

// Fetcher resolves the most recent close for a symbol.
type Fetcher interface {
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}

// StatusError is a non-200 answer from a quote source.
type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Source, e.Code, e.Body)
}

// Temporary reports whether retrying could succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
