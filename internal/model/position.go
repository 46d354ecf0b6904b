package model

// Position is one recorded lot: a purchase of shares at a price on a date.
// Lots are never merged and never edited in place.
type Position struct {
	ID           int64   `json:"id"`
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	CostPerShare float64 `json:"cost_per_share"`
	TradeDate    string  `json:"trade_date"` // YYYY-MM-DD
	Note         string  `json:"note,omitempty"`
}

// DateLayout is the ISO-8601 calendar date format used for trade dates.
const DateLayout = "2006-01-02"
