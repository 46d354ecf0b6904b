package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"PortfolioTracker/internal/report"
)

type viewCmd struct{}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "show every lot with current prices and P&L" }
func (*viewCmd) Usage() string {
	return `tracker view

  Fetches current prices (honouring the quote cache) and prints one line
  per lot followed by the portfolio totals.
`
}

func (*viewCmd) SetFlags(*flag.FlagSet) {}

func (*viewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) error {
		v, err := a.svc.Valuate(ctx)
		if err != nil {
			return err
		}
		cur := a.cfg.Report.Currency
		fmt.Println(report.Table(v.Rows, cur))
		if v.Empty() {
			return nil
		}
		fmt.Println(report.TotalsLine(v.Totals, cur))
		if len(v.Unpriced) > 0 {
			fmt.Printf("No price for: %s\n", strings.Join(v.Unpriced, ", "))
		}
		return nil
	})
}

type summaryCmd struct {
	width int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "render the markdown report in the terminal" }
func (*summaryCmd) Usage() string {
	return `tracker summary [-width <columns>]

  Renders totals, holdings by symbol and trades as styled markdown.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.width, "width", 100, "Word wrap width.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) error {
		v, err := a.svc.Valuate(ctx)
		if err != nil {
			return err
		}
		out, err := report.Terminal(report.Markdown(v, a.reportOptions()), c.width)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	})
}

type reportCmd struct {
	dir string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "write the HTML report with allocation and P&L charts" }
func (*reportCmd) Usage() string {
	return `tracker report [-dir <directory>]

  Writes report.html, allocation.svg and pnl.svg into the report
  directory and prints the page path.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "", "Output directory, defaults to report.dir from the config.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) error {
		dir := c.dir
		if dir == "" {
			dir = a.cfg.Report.Dir
		}
		v, err := a.svc.Valuate(ctx)
		if err != nil {
			return err
		}
		path, err := report.WriteHTML(dir, v, a.reportOptions())
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	})
}

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch fresh prices for every held symbol" }
func (*refreshCmd) Usage() string {
	return `tracker refresh

  Ignores cached quotes, fetches every held symbol again and stores the
  results for later commands.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) error {
		a.svc.Refresh()
		v, err := a.svc.Valuate(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Refreshed %d symbols\n", len(v.Symbols)-len(v.Unpriced))
		if len(v.Unpriced) > 0 {
			fmt.Printf("No price for: %s\n", strings.Join(v.Unpriced, ", "))
		}
		return nil
	})
}
