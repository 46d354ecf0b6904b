package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/valuation"
)

const (
	pieWidth  = 6 * vg.Inch
	pieHeight = 4 * vg.Inch
	barWidth  = 7 * vg.Inch
	barHeight = 4 * vg.Inch

	// pieRadius is the wedge radius in data units; the X range is widened
	// to the canvas ratio so the pie stays round and the legend has room.
	pieRadius = 1.1
)

var (
	gainColor = hexColor(ColorGain)
	lossColor = hexColor(ColorLoss)
)

// PieSVG draws each symbol's allocation_pct. When the portfolio has no
// value every symbol gets an equal slice.
func PieSVG(symbols []model.SymbolSummary) (string, error) {
	p := plot.New()
	p.Title.Text = "Allocation"
	p.HideAxes()
	if len(symbols) == 0 {
		p.Title.Text += ": " + NoPositions
		return renderSVG(p, pieWidth, pieHeight)
	}

	symbols = valuation.SortByValue(symbols)
	weights := pieWeights(symbols)

	start := math.Pi / 2
	for i, s := range symbols {
		sweep := weights[i] * 2 * math.Pi
		wedge, err := plotter.NewPolygon(wedgeXYs(start, sweep))
		if err != nil {
			return "", fmt.Errorf("allocation wedge %s: %w", s.Symbol, err)
		}
		wedge.Color = plotutil.Color(i)
		wedge.LineStyle.Color = color.White
		if weights[i] > 0 {
			p.Add(wedge)
		}
		p.Legend.Add(s.Symbol+" "+Percent(weights[i]), wedge)
		start -= sweep
	}

	ratio := float64(pieWidth) / float64(pieHeight)
	p.Y.Min, p.Y.Max = -pieRadius, pieRadius
	p.X.Min, p.X.Max = -pieRadius, -pieRadius+2*pieRadius*ratio
	p.Legend.Top = true
	return renderSVG(p, pieWidth, pieHeight)
}

// pieWeights returns the slice fractions: allocation_pct, or equal shares
// when every allocation is zero.
func pieWeights(symbols []model.SymbolSummary) []float64 {
	weights := make([]float64, len(symbols))
	total := 0.0
	for i, s := range symbols {
		weights[i] = math.Max(s.AllocationPct, 0)
		total += weights[i]
	}
	if total == 0 {
		for i := range weights {
			weights[i] = 1 / float64(len(weights))
		}
	}
	return weights
}

// wedgeXYs approximates a pie wedge on the unit circle, clockwise from start.
func wedgeXYs(start, sweep float64) plotter.XYs {
	steps := max(int(math.Ceil(sweep/(math.Pi/90))), 1)
	var xys plotter.XYs
	if sweep < 2*math.Pi {
		xys = append(xys, plotter.XY{})
	}
	for k := 0; k <= steps; k++ {
		a := start - sweep*float64(k)/float64(steps)
		xys = append(xys, plotter.XY{X: math.Cos(a), Y: math.Sin(a)})
	}
	return xys
}

// BarSVG draws unrealized P&L per symbol, green for gains and red for losses.
func BarSVG(symbols []model.SymbolSummary, currency string) (string, error) {
	p := plot.New()
	p.Title.Text = "Unrealized P&L by symbol"
	if len(symbols) == 0 {
		p.Title.Text += ": " + NoPositions
		p.HideAxes()
		return renderSVG(p, barWidth, barHeight)
	}

	symbols = valuation.SortByValue(symbols)
	p.Y.Label.Text = "P&L (" + currency + ")"
	p.Add(plotter.NewGrid())

	w := min((barWidth-vg.Inch)/vg.Length(len(symbols))*0.6, vg.Points(48))
	names := make([]string, len(symbols))
	for i, s := range symbols {
		bar, err := plotter.NewBarChart(plotter.Values{s.PnLAbs}, w)
		if err != nil {
			return "", fmt.Errorf("pnl bar %s: %w", s.Symbol, err)
		}
		bar.XMin = float64(i)
		bar.Color = gainColor
		if s.PnLAbs < 0 {
			bar.Color = lossColor
		}
		bar.LineStyle.Width = 0
		p.Add(bar)
		names[i] = s.Symbol
	}
	p.NominalX(names...)
	return renderSVG(p, barWidth, barHeight)
}

// renderSVG draws p and returns the document without its XML prolog so it
// can be inlined in HTML.
func renderSVG(p *plot.Plot, w, h vg.Length) (string, error) {
	c := vgsvg.New(w, h)
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	out := buf.String()
	if i := strings.Index(out, "<svg"); i > 0 {
		out = out[i:]
	}
	return out, nil
}

func hexColor(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
