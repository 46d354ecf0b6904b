package notifier

import (
	"fmt"
	"html"
	"strings"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/valuation"
)

// maxHoldings bounds the per-symbol lines of a chat summary.
const maxHoldings = 10

// FormatSummary formats a valuation into a Telegram HTML message.
func FormatSummary(v model.Valuation, currency string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Portfolio</b> | %s\n\n", v.AsOf.Format("2006-01-02 15:04")))
	if v.Empty() {
		b.WriteString(report.NoPositions)
		return b.String()
	}

	t := v.Totals
	b.WriteString(fmt.Sprintf("Value: %s\n", esc(report.Money(t.TotalValue, currency))))
	b.WriteString(fmt.Sprintf("Cost: %s\n", esc(report.Money(t.TotalCost, currency))))
	b.WriteString(fmt.Sprintf("%s P&amp;L: %s (%s)\n\n", trend(t.TotalPnL), esc(report.Money(t.TotalPnL, currency)), report.Percent(t.TotalPnLPct)))

	b.WriteString("<b>Holdings:</b>\n")
	symbols := valuation.SortByValue(v.Symbols)
	for i, s := range symbols {
		if i == maxHoldings {
			b.WriteString(fmt.Sprintf("  … %d more\n", len(symbols)-maxHoldings))
			break
		}
		b.WriteString(fmt.Sprintf("  %s %s: %s (%s, %s of portfolio)\n",
			trend(s.PnLAbs), esc(s.Symbol),
			esc(report.Money(s.CurrentValue, currency)),
			report.Percent(s.PnLPct),
			report.Percent(s.AllocationPct)))
	}

	if len(v.Unpriced) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ No price for: %s\n", esc(strings.Join(v.Unpriced, ", "))))
	}
	return b.String()
}

// FormatError formats a failed job for the chat.
func FormatError(job string, err error) string {
	return fmt.Sprintf("❌ %s failed: %s", esc(job), esc(err.Error()))
}

// FormatHelp lists the commands understood by the bot.
func FormatHelp() string {
	return "Available commands:\n• /summary - current valuation\n• /refresh - refetch prices\n• /report - write the HTML report"
}

func trend(v float64) string {
	switch {
	case v > 0:
		return "🟢"
	case v < 0:
		return "🔴"
	default:
		return "⚪"
	}
}

func esc(s string) string { return html.EscapeString(s) }
