package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultPricePath extracts the price from a {"price": ...} answer.
const DefaultPricePath = "$.price"

// RESTFetcher implements Fetcher against a generic JSON quote endpoint.
// The price is located in the answer with a JSONPath expression.
type RESTFetcher struct {
	BaseURL   string
	APIKey    string
	PricePath string
	Client    *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, pricePath, proxyURL string) *RESTFetcher {
	if pricePath == "" {
		pricePath = DefaultPricePath
	}
	return &RESTFetcher{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		PricePath: pricePath,
		Client:    newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

func (f *RESTFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &StatusError{Source: "rest", Code: resp.StatusCode, Body: string(body)}
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return 0, fmt.Errorf("decode price: %w", err)
	}
	jval, err := jsonpath.Get(f.PricePath, jobj)
	if err != nil {
		return 0, fmt.Errorf("price path %q: %w", f.PricePath, err)
	}
	// filters and slices answer with a list, keep the first element
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return 0, fmt.Errorf("%s: %w", symbol, ErrNoPrice)
		}
		jval = jlist[0]
	}
	return toFloat(jval)
}

// toFloat accepts JSON numbers and numeric strings, including a decimal comma.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("price %q: %w", n, ErrNoPrice)
		}
		return f, nil
	case nil:
		return 0, ErrNoPrice
	default:
		return 0, fmt.Errorf("price of type %T: %w", v, ErrNoPrice)
	}
}
