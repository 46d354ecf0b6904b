package dashboard

import (
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/valuation"
)

type pageData struct {
	Title    string
	Currency string
	Totals   model.Totals
	Symbols  []model.SymbolSummary
	Trades   []model.ValuationRow
	Unpriced []string
	AsOf     time.Time
	Updated  string
	Today    string
	Pie      template.HTML
	Bar      template.HTML
	Empty    bool
	Message  string
	Error    string
}

func newPageData(v model.Valuation, opts report.Options, now time.Time) (pageData, error) {
	d := pageData{
		Title:    opts.Title,
		Currency: opts.Currency,
		Totals:   v.Totals,
		Symbols:  valuation.SortByValue(v.Symbols),
		Trades:   valuation.SortByTradeDate(v.Rows),
		Unpriced: v.Unpriced,
		AsOf:     v.AsOf,
		Today:    now.Format(model.DateLayout),
		Empty:    v.Empty(),
	}
	if d.Title == "" {
		d.Title = "Portfolio"
	}
	if !v.AsOf.IsZero() {
		d.Updated = humanize.RelTime(v.AsOf, now, "ago", "from now")
	}
	if d.Empty {
		return d, nil
	}
	// Generated from numbers and escaped symbols only.
	pie, err := report.PieSVG(v.Symbols)
	if err != nil {
		return d, err
	}
	bar, err := report.BarSVG(v.Symbols, opts.Currency)
	if err != nil {
		return d, err
	}
	d.Pie, d.Bar = template.HTML(pie), template.HTML(bar)
	return d, nil
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"money":   report.Money,
	"price":   report.Price,
	"percent": report.Percent,
	"shares":  report.Shares,
	"pnl": func(v float64) string {
		switch {
		case v > 0:
			return "gain"
		case v < 0:
			return "loss"
		}
		return ""
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
td.num { text-align: right; }
.kpis { display: flex; gap: 2em; margin-bottom: 1.5em; }
.kpi b { display: block; font-size: 1.4em; }
.gain { color: ` + report.ColorGain + `; }
.loss { color: ` + report.ColorLoss + `; }
.flash { padding: 6px; background: #eef6ee; }
.flash.error { background: #fbeaea; }
.charts svg { margin-right: 2em; }
form.inline { display: inline; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Message}}<p class="flash">{{.}}</p>{{end}}
{{with .Error}}<p class="flash error">{{.}}</p>{{end}}

<div class="kpis">
<div class="kpi">Total value<b id="total-value">{{money .Totals.TotalValue .Currency}}</b></div>
<div class="kpi">Total cost<b id="total-cost">{{money .Totals.TotalCost .Currency}}</b></div>
<div class="kpi">P&amp;L<b id="total-pnl" class="{{pnl .Totals.TotalPnL}}">{{money .Totals.TotalPnL .Currency}} ({{percent .Totals.TotalPnLPct}})</b></div>
</div>
{{if .Updated}}<p>Prices as of {{.AsOf.Format "2006-01-02 15:04:05"}} ({{.Updated}})</p>{{end}}
{{if .Unpriced}}<p class="loss">No price for: {{range $i, $s := .Unpriced}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}

<form class="inline" method="post" action="/refresh"><button>Refresh prices</button></form>
<form class="inline" method="post" action="/report"><button>Write report</button></form>
<a href="/export.csv">Download positions CSV</a>
<a href="/export.csv?derived=1">Download valuation CSV</a>

{{if .Empty}}
<p>No positions.</p>
{{else}}
<div class="charts">{{.Pie}}{{.Bar}}</div>

<h2>Holdings</h2>
<table>
<tr><th>Symbol</th><th>Lots</th><th>Shares</th><th>Cost basis</th><th>Value</th><th>P&amp;L</th><th>P&amp;L %</th><th>Allocation</th></tr>
{{range .Symbols}}<tr>
<td>{{.Symbol}}</td>
<td class="num">{{.Lots}}</td>
<td class="num">{{shares .Shares}}</td>
<td class="num">{{money .CostBasis $.Currency}}</td>
<td class="num">{{if .Priced}}{{money .CurrentValue $.Currency}}{{else}}n/a{{end}}</td>
<td class="num {{pnl .PnLAbs}}">{{money .PnLAbs $.Currency}}</td>
<td class="num {{pnl .PnLAbs}}">{{percent .PnLPct}}</td>
<td class="num">{{percent .AllocationPct}}</td>
</tr>
{{end}}</table>

<h2>Trades</h2>
<table>
<tr><th>ID</th><th>Date</th><th>Symbol</th><th>Shares</th><th>Cost/share</th><th>Price</th><th>Value</th><th>P&amp;L</th><th>Note</th><th></th></tr>
{{range .Trades}}<tr>
<td>{{.ID}}</td>
<td>{{.TradeDate}}</td>
<td>{{.Symbol}}</td>
<td class="num">{{shares .Shares}}</td>
<td class="num">{{money .CostPerShare $.Currency}}</td>
<td class="num">{{price .CurrentPrice .Priced $.Currency}}</td>
<td class="num">{{money .CurrentValue $.Currency}}</td>
<td class="num {{pnl .PnLAbs}}">{{money .PnLAbs $.Currency}} ({{percent .PnLPct}})</td>
<td>{{.Note}}</td>
<td><form class="inline" method="post" action="/trades/{{.ID}}/delete"><button>Delete</button></form></td>
</tr>
{{end}}</table>
{{end}}

<h2>Add trade</h2>
<form method="post" action="/trades">
<input name="symbol" placeholder="Symbol" required>
<input name="shares" placeholder="Shares" required>
<input name="cost_per_share" placeholder="Cost per share" required>
<input name="trade_date" type="date" value="{{.Today}}">
<input name="note" placeholder="Note">
<button>Add</button>
</form>

<h2>Import CSV</h2>
<form method="post" action="/import" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,text/csv">
<button>Import</button>
</form>

<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function (ev) {
    var m = JSON.parse(ev.data);
    document.getElementById("total-value").textContent = m.total_value;
    document.getElementById("total-cost").textContent = m.total_cost;
    document.getElementById("total-pnl").textContent = m.total_pnl;
  };
})();
</script>
</body>
</html>
`))
