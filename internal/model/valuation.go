package model

import "time"

// ValuationRow holds the metrics derived for a single lot.
type ValuationRow struct {
	Position
	CurrentPrice float64 `json:"current_price"`
	CurrentValue float64 `json:"current_value"`
	CostBasis    float64 `json:"cost_basis"`
	PnLAbs       float64 `json:"pnl_abs"`
	PnLPct       float64 `json:"pnl_pct"`
	Priced       bool    `json:"priced"`
}

// SymbolSummary aggregates every lot of one symbol.
type SymbolSummary struct {
	Symbol        string  `json:"symbol"`
	Lots          int     `json:"lots"`
	Shares        float64 `json:"shares"`
	CostBasis     float64 `json:"cost_basis"`
	CurrentValue  float64 `json:"current_value"`
	PnLAbs        float64 `json:"pnl_abs"`
	PnLPct        float64 `json:"pnl_pct"`
	AllocationPct float64 `json:"allocation_pct"`
	Priced        bool    `json:"priced"`
}

// Totals are the portfolio-level sums.
type Totals struct {
	TotalValue  float64 `json:"total_value"`
	TotalCost   float64 `json:"total_cost"`
	TotalPnL    float64 `json:"total_pnl"`
	TotalPnLPct float64 `json:"total_pnl_pct"`
}

// Valuation is a complete snapshot computed from one set of positions and one set of prices.
type Valuation struct {
	Rows     []ValuationRow  `json:"rows"`
	Symbols  []SymbolSummary `json:"symbols"`
	Totals   Totals          `json:"totals"`
	Unpriced []string        `json:"unpriced,omitempty"`
	AsOf     time.Time       `json:"as_of"`
}

// Empty reports whether the valuation has no positions.
func (v *Valuation) Empty() bool {
	return len(v.Rows) == 0
}
