// Package valuation turns positions and prices into valuation rows, per-symbol
// aggregates and portfolio totals. It performs no I/O and never fails.
package valuation

import (
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"PortfolioTracker/internal/model"
)

// ComputePositionMetrics derives one row per position, in input order.
// A symbol missing from prices is treated as unpriced (0.0).
func ComputePositionMetrics(positions []model.Position, prices map[string]float64) []model.ValuationRow {
	rows := make([]model.ValuationRow, len(positions))
	for i, p := range positions {
		price := prices[normalize(p.Symbol)]
		currentValue := p.Shares * price
		costBasis := p.Shares * p.CostPerShare
		pnl := currentValue - costBasis
		rows[i] = model.ValuationRow{
			Position:     p,
			CurrentPrice: price,
			CurrentValue: currentValue,
			CostBasis:    costBasis,
			PnLAbs:       pnl,
			PnLPct:       ratio(pnl, costBasis),
			Priced:       !model.IsUnpriced(price),
		}
	}
	return rows
}

// AggregateBySymbol groups rows by uppercased symbol. The percentage is
// recomputed from the summed values, not averaged over lots. Groups appear in
// the order their symbol first occurs in rows.
func AggregateBySymbol(rows []model.ValuationRow) []model.SymbolSummary {
	index := make(map[string]int)
	out := make([]model.SymbolSummary, 0, len(rows))
	for _, r := range rows {
		sym := normalize(r.Symbol)
		i, ok := index[sym]
		if !ok {
			i = len(out)
			index[sym] = i
			out = append(out, model.SymbolSummary{Symbol: sym, Priced: true})
		}
		s := &out[i]
		s.Lots++
		s.Shares += r.Shares
		s.CostBasis += r.CostBasis
		s.CurrentValue += r.CurrentValue
		s.PnLAbs += r.PnLAbs
		s.Priced = s.Priced && r.Priced
	}
	for i := range out {
		out[i].PnLPct = ratio(out[i].PnLAbs, out[i].CostBasis)
	}
	return out
}

// ComputeTotals sums value and cost over rows.
func ComputeTotals(rows []model.ValuationRow) model.Totals {
	values := make([]float64, len(rows))
	costs := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.CurrentValue
		costs[i] = r.CostBasis
	}
	return totals(values, costs)
}

// TotalsOf sums value and cost over symbol aggregates. For any rows,
// TotalsOf(AggregateBySymbol(rows)) agrees with ComputeTotals(rows).
func TotalsOf(symbols []model.SymbolSummary) model.Totals {
	values := make([]float64, len(symbols))
	costs := make([]float64, len(symbols))
	for i, s := range symbols {
		values[i] = s.CurrentValue
		costs[i] = s.CostBasis
	}
	return totals(values, costs)
}

// Allocate returns a copy of symbols with AllocationPct set to each symbol's
// share of the total value, or 0 for every symbol when the total is 0.
func Allocate(symbols []model.SymbolSummary, t model.Totals) []model.SymbolSummary {
	out := make([]model.SymbolSummary, len(symbols))
	copy(out, symbols)
	for i := range out {
		out[i].AllocationPct = ratio(out[i].CurrentValue, t.TotalValue)
	}
	return out
}

// Evaluate builds a full valuation snapshot.
func Evaluate(positions []model.Position, prices map[string]float64, asOf time.Time) model.Valuation {
	rows := ComputePositionMetrics(positions, prices)
	symbols := AggregateBySymbol(rows)
	t := ComputeTotals(rows)
	symbols = Allocate(symbols, t)

	var unpriced []string
	for _, s := range symbols {
		if !s.Priced {
			unpriced = append(unpriced, s.Symbol)
		}
	}

	return model.Valuation{
		Rows:     rows,
		Symbols:  symbols,
		Totals:   t,
		Unpriced: unpriced,
		AsOf:     asOf,
	}
}

func totals(values, costs []float64) model.Totals {
	t := model.Totals{}
	if len(values) > 0 {
		t.TotalValue = floats.Sum(values)
		t.TotalCost = floats.Sum(costs)
	}
	t.TotalPnL = t.TotalValue - t.TotalCost
	t.TotalPnLPct = ratio(t.TotalPnL, t.TotalCost)
	return t
}

// ratio divides with the zero-denominator guard used by every percentage.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
