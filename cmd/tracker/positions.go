package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/report"
)

type addCmd struct {
	symbol string
	shares float64
	price  float64
	date   string
	note   string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a purchased lot" }
func (*addCmd) Usage() string {
	return `tracker add -symbol <symbol> -shares <n> -price <cost per share> [-date YYYY-MM-DD] [-note <text>]

  Records one lot. Lots are never merged: buying the same symbol twice
  stores two rows. The date defaults to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol, stored uppercased.")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares bought.")
	f.Float64Var(&c.price, "price", 0, "Cost per share.")
	f.StringVar(&c.date, "date", "", "Trade date (YYYY-MM-DD), defaults to today.")
	f.StringVar(&c.note, "note", "", "Free-form note.")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.symbol) == "" {
		return exitStatus(usageError("-symbol is required"))
	}
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if !set["shares"] || !set["price"] {
		return exitStatus(usageError("-shares and -price are required"))
	}
	return withApp(ctx, func(a *app) error {
		p, err := a.svc.AddPosition(ctx, model.Position{
			Symbol:       c.symbol,
			Shares:       c.shares,
			CostPerShare: c.price,
			TradeDate:    c.date,
			Note:         c.note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added lot #%d: %s %s @ %s on %s\n", p.ID, report.Shares(p.Shares), p.Symbol,
			report.Money(p.CostPerShare, a.cfg.Report.Currency), p.TradeDate)
		return nil
	})
}

type deleteCmd struct {
	id int64
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a lot by id" }
func (*deleteCmd) Usage() string {
	return `tracker delete -id <id>

  Removes one lot. Use 'tracker list' to find ids.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Id of the lot to delete.")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id <= 0 {
		return exitStatus(usageError("-id must be a positive lot id"))
	}
	return withApp(ctx, func(a *app) error {
		if err := a.svc.DeletePosition(ctx, c.id); err != nil {
			return fmt.Errorf("delete lot #%d: %w", c.id, err)
		}
		fmt.Printf("Deleted lot #%d\n", c.id)
		return nil
	})
}

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list stored lots without fetching prices" }
func (*listCmd) Usage() string {
	return `tracker list

  Prints every stored lot in id order.
`
}

func (*listCmd) SetFlags(*flag.FlagSet) {}

func (*listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) error {
		positions, err := a.svc.ListPositions(ctx)
		if err != nil {
			return err
		}
		fmt.Println(report.PositionsTable(positions, a.cfg.Report.Currency))
		return nil
	})
}
