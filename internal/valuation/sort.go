package valuation

import (
	"sort"

	"PortfolioTracker/internal/model"
)

// SortByValue orders symbol aggregates by descending current value.
// Ties keep their symbol order so output is deterministic.
func SortByValue(symbols []model.SymbolSummary) []model.SymbolSummary {
	out := make([]model.SymbolSummary, len(symbols))
	copy(out, symbols)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CurrentValue != out[j].CurrentValue {
			return out[i].CurrentValue > out[j].CurrentValue
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// SortByTradeDate orders lot rows newest first, then by descending ID.
func SortByTradeDate(rows []model.ValuationRow) []model.ValuationRow {
	out := make([]model.ValuationRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TradeDate != out[j].TradeDate {
			return out[i].TradeDate > out[j].TradeDate
		}
		return out[i].ID > out[j].ID
	})
	return out
}
