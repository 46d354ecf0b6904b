package report

import (
	"fmt"
	"strings"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/valuation"
)

// NoPositions is rendered instead of tables for an empty portfolio.
const NoPositions = "No positions."

// Options control the presentation of a report.
type Options struct {
	Title    string
	Currency string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Portfolio Report"
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	return o
}

// Markdown renders the headline totals, the per-symbol holdings sorted by
// value and the individual lots, newest first.
func Markdown(v model.Valuation, opts Options) string {
	opts = opts.withDefaults()
	cur := opts.Currency

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n\n", opts.Title, v.AsOf.Format(model.DateLayout))

	if v.Empty() {
		fmt.Fprintf(&b, "%s\n", NoPositions)
		return b.String()
	}

	fmt.Fprintf(&b, "**Total Value:** %s | **Total Cost:** %s | **P&L:** %s (%s)\n\n",
		Money(v.Totals.TotalValue, cur),
		Money(v.Totals.TotalCost, cur),
		Money(v.Totals.TotalPnL, cur),
		Percent(v.Totals.TotalPnLPct),
	)
	if len(v.Unpriced) > 0 {
		fmt.Fprintf(&b, "> No price for %s: valued at 0.\n\n", strings.Join(v.Unpriced, ", "))
	}

	fmt.Fprintln(&b, "## Holdings")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Symbol | Lots | Shares | Current Value | Cost Basis | P&L | P&L % | Allocation |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, s := range valuation.SortByValue(v.Symbols) {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s |\n",
			s.Symbol,
			s.Lots,
			Shares(s.Shares),
			Money(s.CurrentValue, cur),
			Money(s.CostBasis, cur),
			Money(s.PnLAbs, cur),
			Percent(s.PnLPct),
			Percent(s.AllocationPct),
		)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Trades")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| ID | Date | Symbol | Shares | Cost/Share | Price | Current Value | Cost Basis | P&L | P&L % | Note |")
	fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|---:|---:|---:|---:|---:|:---|")
	for _, r := range valuation.SortByTradeDate(v.Rows) {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.ID,
			r.TradeDate,
			r.Symbol,
			Shares(r.Shares),
			Money(r.CostPerShare, cur),
			Price(r.CurrentPrice, r.Priced, cur),
			Money(r.CurrentValue, cur),
			Money(r.CostBasis, cur),
			Money(r.PnLAbs, cur),
			Percent(r.PnLPct),
			escapeCell(r.Note),
		)
	}
	return b.String()
}

// TotalsLine is the one-line summary printed under the CLI table.
func TotalsLine(t model.Totals, currency string) string {
	return fmt.Sprintf("Total Value: %s, Total Cost: %s, P&L: %s (%s)",
		Money(t.TotalValue, currency),
		Money(t.TotalCost, currency),
		Money(t.TotalPnL, currency),
		Percent(t.TotalPnLPct),
	)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
