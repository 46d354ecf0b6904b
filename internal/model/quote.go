package model

import "time"

// PriceQuote is the most recent close known for a symbol.
type PriceQuote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at"`
}

// UnknownPrice is the sentinel used when no price could be obtained.
// It means "unpriced", not "worthless".
const UnknownPrice = 0.0

// IsUnpriced reports whether price is the unknown sentinel.
func IsUnpriced(price float64) bool {
	return price == UnknownPrice
}
