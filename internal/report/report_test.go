package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/valuation"
)

var asOf = time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)

func sample() model.Valuation {
	return valuation.Evaluate([]model.Position{
		{ID: 1, Symbol: "AAPL", Shares: 10, CostPerShare: 150, TradeDate: "2024-01-02", Note: "core | long"},
		{ID: 2, Symbol: "MSFT", Shares: 2, CostPerShare: 400, TradeDate: "2024-03-04"},
		{ID: 3, Symbol: "GONE", Shares: 4, CostPerShare: 25, TradeDate: "2024-02-01"},
	}, map[string]float64{"AAPL": 180, "MSFT": 250}, asOf)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{1800, "$1,800.00"},
		{-300, "-$300.00"},
		{0.005, "$0.01"},
		{1234567.891, "$1,234,567.89"},
		{0, "$0.00"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Money(tc.v, "USD"), "%v", tc.v)
	}
	assert.Equal(t, "12.50", Money(12.5, "???"))
}

func TestPercentAndPrice(t *testing.T) {
	assert.Equal(t, "20.00%", Percent(0.2))
	assert.Equal(t, "-33.33%", Percent(-1.0/3))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, NotAvailable, Price(0, false, "USD"))
	assert.Equal(t, "$180.00", Price(180, true, "USD"))
	assert.Equal(t, "2.5", Shares(2.5))
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sample(), Options{Currency: "USD"})

	assert.True(t, strings.HasPrefix(out, "# Portfolio Report - 2024-06-01\n"))
	assert.Contains(t, out, "**Total Value:** $2,300.00 | **Total Cost:** $2,400.00 | **P&L:** -$100.00 (-4.17%)")
	assert.Contains(t, out, "No price for GONE")
	assert.Contains(t, out, "| AAPL | 1 | 10 | $1,800.00 | $1,500.00 | $300.00 | 20.00% | 78.26% |")
	assert.Contains(t, out, `core \| long`)
	assert.Contains(t, out, "| 3 | 2024-02-01 | GONE | 4 | $25.00 | n/a | $0.00 | $100.00 | -$100.00 | -100.00% |")

	// holdings by value, trades newest first
	assert.Less(t, strings.Index(out, "| AAPL | 1"), strings.Index(out, "| MSFT | 1"))
	assert.Less(t, strings.Index(out, "| 2 | 2024-03-04"), strings.Index(out, "| 3 | 2024-02-01"))
}

func TestMarkdown_Empty(t *testing.T) {
	out := Markdown(valuation.Evaluate(nil, nil, asOf), Options{Title: "Mine"})
	assert.Equal(t, "# Mine - 2024-06-01\n\nNo positions.\n", out)
}

func TestTable(t *testing.T) {
	v := sample()
	out := Table(v.Rows, "USD")
	for _, h := range TableHeaders {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "$1,800.00")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "-100.00%")

	assert.Equal(t, NoPositions, Table(nil, "USD"))
	assert.Equal(t, "Total Value: $2,300.00, Total Cost: $2,400.00, P&L: -$100.00 (-4.17%)", TotalsLine(v.Totals, "USD"))
}

func TestPositionsTable(t *testing.T) {
	out := PositionsTable([]model.Position{
		{ID: 7, Symbol: "VTI", Shares: 3, CostPerShare: 220.5, TradeDate: "2023-12-29", Note: "ira"},
	}, "USD")
	for _, h := range PositionHeaders {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "$220.50")
	assert.Contains(t, out, "ira")
	assert.Equal(t, NoPositions, PositionsTable(nil, "USD"))
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(Markdown(sample(), Options{}), 120)
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "Portfolio Report")
}

func TestPieSVG(t *testing.T) {
	out, err := PieSVG(sample().Symbols)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "AAPL 78.26%")
	assert.Contains(t, out, "GONE 0.00%")

	zero := valuation.Evaluate([]model.Position{
		{ID: 1, Symbol: "A", Shares: 1, CostPerShare: 1, TradeDate: "2024-01-01"},
		{ID: 2, Symbol: "B", Shares: 1, CostPerShare: 1, TradeDate: "2024-01-01"},
	}, nil, asOf)
	out, err = PieSVG(zero.Symbols)
	require.NoError(t, err)
	assert.Contains(t, out, "A 50.00%")
	assert.Contains(t, out, "B 50.00%")

	single := valuation.Evaluate([]model.Position{{ID: 1, Symbol: "A", Shares: 1, TradeDate: "2024-01-01"}},
		map[string]float64{"A": 5}, asOf)
	out, err = PieSVG(single.Symbols)
	require.NoError(t, err)
	assert.Contains(t, out, "A 100.00%")

	out, err = PieSVG(nil)
	require.NoError(t, err)
	assert.Contains(t, out, NoPositions)
}

func TestPieWeights(t *testing.T) {
	weights := pieWeights([]model.SymbolSummary{
		{Symbol: "A", CurrentValue: 100, AllocationPct: 0.25},
		{Symbol: "B", CurrentValue: 100, AllocationPct: 0.75},
	})
	assert.Equal(t, []float64{0.25, 0.75}, weights, "slices follow allocation_pct")

	weights = pieWeights([]model.SymbolSummary{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}, {Symbol: "D"}})
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, weights)
}

func TestWedgeXYs(t *testing.T) {
	half := wedgeXYs(math.Pi/2, math.Pi)
	assert.Equal(t, plotter.XY{}, half[0], "wedge starts at the centre")
	last := half[len(half)-1]
	assert.InDelta(t, 0, last.X, 1e-9)
	assert.InDelta(t, -1, last.Y, 1e-9)

	full := wedgeXYs(math.Pi/2, 2*math.Pi)
	assert.InDelta(t, 1, full[0].Y, 1e-9, "full circle has no centre point")
}

func TestBarSVG(t *testing.T) {
	out, err := BarSVG(sample().Symbols, "USD")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "fill:"+strings.ToUpper(ColorGain))
	assert.Contains(t, out, "fill:"+strings.ToUpper(ColorLoss))
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "P&amp;L (USD)")

	out, err = BarSVG(nil, "USD")
	require.NoError(t, err)
	assert.Contains(t, out, NoPositions)
}

func TestWriteHTML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "report")
	path, err := WriteHTML(dir, sample(), Options{Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, PageFile), path)

	page, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Portfolio Report - 2024-06-01</title>")
	assert.Contains(t, string(page), "<table>")
	assert.Contains(t, string(page), `src="allocation.svg"`)

	for _, f := range []string{AllocationFile, PnLFile} {
		data, err := os.ReadFile(filepath.Join(dir, f))
		require.NoError(t, err, f)
		assert.True(t, strings.HasPrefix(string(data), "<svg"), f)
	}
}

func TestWriteHTML_Empty(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteHTML(dir, valuation.Evaluate(nil, nil, asOf), Options{})
	require.NoError(t, err)

	page, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(page), NoPositions)
	assert.NotContains(t, string(page), "allocation.svg")
	_, err = os.Stat(filepath.Join(dir, AllocationFile))
	assert.True(t, os.IsNotExist(err))
}
