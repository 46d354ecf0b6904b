package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"PortfolioTracker/internal/csvio"
)

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import lots from a CSV file" }
func (*importCmd) Usage() string {
	return `tracker import <file.csv | ->

  Reads symbol,shares,cost_per_share,trade_date[,note] rows and stores
  them all, or none if any row is invalid. '-' reads standard input.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return exitStatus(usageError("import takes exactly one file argument"))
	}
	name := f.Arg(0)

	var r io.Reader = os.Stdin
	if name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return exitStatus(err)
		}
		defer file.Close()
		r = file
	}

	return withApp(ctx, func(a *app) error {
		n, err := a.svc.ImportCSV(ctx, r)
		if err != nil {
			return fmt.Errorf("import %s: %w", name, err)
		}
		fmt.Printf("Imported %d lots\n", n)
		return nil
	})
}

type exportCmd struct {
	output    string
	valuation bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export lots as CSV" }
func (*exportCmd) Usage() string {
	return `tracker export [-o <file.csv>] [-valuation]

  Writes every lot in the import format, or with -valuation the per-lot
  valuation columns. Output goes to standard output unless -o is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, defaults to standard output.")
	f.BoolVar(&c.valuation, "valuation", false, "Export current prices, values and P&L per lot.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) error {
		var w io.Writer = os.Stdout
		if c.output != "" {
			file, err := os.Create(c.output)
			if err != nil {
				return err
			}
			defer file.Close()
			w = file
		}

		if !c.valuation {
			return a.svc.ExportCSV(ctx, w)
		}
		v, err := a.svc.Valuate(ctx)
		if err != nil {
			return err
		}
		return csvio.WriteValuation(w, v.Rows)
	})
}
