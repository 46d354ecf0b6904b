package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/valuation"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(report.ColorLoss))
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	return s
}

func symbolColumns() []table.Column {
	return []table.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Lots", Width: 5},
		{Title: "Shares", Width: 10},
		{Title: "Cost", Width: 14},
		{Title: "Value", Width: 14},
		{Title: "P&L", Width: 14},
		{Title: "P&L %", Width: 9},
		{Title: "Alloc", Width: 8},
	}
}

func lotColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 10},
		{Title: "Symbol", Width: 8},
		{Title: "Shares", Width: 10},
		{Title: "Price", Width: 12},
		{Title: "Value", Width: 14},
		{Title: "P&L", Width: 14},
		{Title: "P&L %", Width: 9},
	}
}

// rebuildTable refills the table for the current mode. Columns are swapped
// before rows so every row matches the column count.
func (m *Model) rebuildTable() {
	m.table.SetRows(nil)
	if m.mode == lotsView {
		m.table.SetColumns(lotColumns())
	} else {
		m.table.SetColumns(symbolColumns())
	}
	if m.valuation == nil {
		return
	}

	var rows []table.Row
	cur := m.currency
	if m.mode == lotsView {
		for _, r := range valuation.SortByTradeDate(m.valuation.Rows) {
			rows = append(rows, table.Row{
				strconv.FormatInt(r.ID, 10),
				r.TradeDate,
				r.Symbol,
				report.Shares(r.Shares),
				report.Price(r.CurrentPrice, r.Priced, cur),
				report.Money(r.CurrentValue, cur),
				report.Money(r.PnLAbs, cur),
				report.Percent(r.PnLPct),
			})
		}
	} else {
		for _, s := range valuation.SortByValue(m.valuation.Symbols) {
			value := report.NotAvailable
			if s.Priced {
				value = report.Money(s.CurrentValue, cur)
			}
			rows = append(rows, table.Row{
				s.Symbol,
				strconv.Itoa(s.Lots),
				report.Shares(s.Shares),
				report.Money(s.CostBasis, cur),
				value,
				report.Money(s.PnLAbs, cur),
				report.Percent(s.PnLPct),
				report.Percent(s.AllocationPct),
			})
		}
	}
	m.table.SetRows(rows)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Portfolio"))
	if m.loading {
		b.WriteString(helpStyle.Render("  loading..."))
	}
	b.WriteString("\n\n")

	if m.valuation != nil {
		t := m.valuation.Totals
		pnl := report.PnLStyle(t.TotalPnL, valueStyle)
		b.WriteString(labelStyle.Render("Value ") + valueStyle.Render(report.Money(t.TotalValue, m.currency)))
		b.WriteString("   " + labelStyle.Render("Cost ") + valueStyle.Render(report.Money(t.TotalCost, m.currency)))
		b.WriteString("   " + labelStyle.Render("P&L ") + pnl.Render(report.Money(t.TotalPnL, m.currency)+" ("+report.Percent(t.TotalPnLPct)+")"))
		b.WriteString("\n")
		if !m.valuation.AsOf.IsZero() {
			b.WriteString(labelStyle.Render("as of " + m.valuation.AsOf.Format("2006-01-02 15:04:05")))
		}
		if len(m.valuation.Unpriced) > 0 {
			b.WriteString("  " + errStyle.Render("no price: "+strings.Join(m.valuation.Unpriced, ", ")))
		}
		b.WriteString("\n\n")

		if m.valuation.Empty() {
			b.WriteString(report.NoPositions + "\n")
		} else {
			b.WriteString(m.table.View() + "\n")
		}
	}

	if m.err != nil {
		b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab symbols/lots • r refresh • q quit"))
	return b.String()
}
