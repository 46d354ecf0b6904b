package report

import (
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"PortfolioTracker/internal/model"
)

// Colors shared by the charts, the CLI table and the terminal dashboard.
const (
	ColorGain = "#2ca02c"
	ColorLoss = "#d62728"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TableHeaders are the columns of the per-lot CLI table.
var TableHeaders = []string{"id", "symbol", "shares", "current_price", "cost_basis", "current_value", "pnl_abs", "pnl_pct"}

// Table renders one line per lot for the `view` command.
func Table(rows []model.ValuationRow, currency string) string {
	if len(rows) == 0 {
		return NoPositions
	}

	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.Symbol,
			Shares(r.Shares),
			Price(r.CurrentPrice, r.Priced, currency),
			Money(r.CostBasis, currency),
			Money(r.CurrentValue, currency),
			Money(r.PnLAbs, currency),
			Percent(r.PnLPct),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(TableHeaders...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col <= 1:
				return cellStyle
			case col >= 6 && row < len(rows):
				return PnLStyle(rows[row].PnLAbs, numberStyle)
			default:
				return numberStyle
			}
		})
	return t.String()
}

// PositionHeaders are the columns of the `list` command.
var PositionHeaders = []string{"id", "trade_date", "symbol", "shares", "cost_per_share", "note"}

// PositionsTable renders stored lots without prices.
func PositionsTable(positions []model.Position, currency string) string {
	if len(positions) == 0 {
		return NoPositions
	}
	data := make([][]string, len(positions))
	for i, p := range positions {
		data[i] = []string{
			strconv.FormatInt(p.ID, 10),
			p.TradeDate,
			p.Symbol,
			Shares(p.Shares),
			Money(p.CostPerShare, currency),
			p.Note,
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(PositionHeaders...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3 || col == 4:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// PnLStyle colors base green for gains and red for losses.
func PnLStyle(pnl float64, base lipgloss.Style) lipgloss.Style {
	switch {
	case pnl > 0:
		return base.Foreground(lipgloss.Color(ColorGain))
	case pnl < 0:
		return base.Foreground(lipgloss.Color(ColorLoss))
	default:
		return base
	}
}

// Terminal renders markdown for a terminal of the given width.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
