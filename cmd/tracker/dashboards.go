package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"PortfolioTracker/internal/dashboard"
	"PortfolioTracker/internal/logger"
	"PortfolioTracker/internal/notifier"
	"PortfolioTracker/internal/scheduler"
	"PortfolioTracker/internal/tui"
)

type tuiCmd struct{}

func (*tuiCmd) Name() string     { return "tui" }
func (*tuiCmd) Synopsis() string { return "open the terminal dashboard" }
func (*tuiCmd) Usage() string {
	return `tracker tui

  Interactive holdings view. tab switches between symbols and lots,
  r refreshes prices, q quits.
`
}

func (*tuiCmd) SetFlags(*flag.FlagSet) {}

func (*tuiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) error {
		m := tui.NewModel(ctx, a.svc, a.cfg.Report.Currency, a.cfg.Dashboard.RefreshInterval)
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})
}

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the web dashboard, scheduled jobs and Telegram bot" }
func (*serveCmd) Usage() string {
	return `tracker serve [-addr <host:port>]

  Serves the web dashboard and JSON API, runs the configured cron jobs
  and, when a bot token is set, answers Telegram commands. Stops on
  SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, defaults to dashboard.addr from the config.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(a *app) error {
		cfg := a.cfg
		addr := c.addr
		if addr == "" {
			addr = cfg.Dashboard.Addr
		}

		var n notifier.Notifier = notifier.Nop{}
		var tn *notifier.TelegramNotifier
		if cfg.TelegramEnabled() {
			tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.Component(a.log, "notifier"))
			n = tn
		} else {
			a.log.Info().Msg("telegram not configured, notifications disabled")
		}

		sched := scheduler.NewScheduler(ctx, a.svc, n, cfg.Report.Dir, a.reportOptions(), logger.Component(a.log, "scheduler"))
		if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
			return err
		}

		srv := dashboard.New(dashboard.Config{
			Addr:            addr,
			Service:         a.svc,
			Log:             a.log,
			Report:          a.reportOptions(),
			ReportDir:       cfg.Report.Dir,
			RefreshInterval: cfg.Dashboard.RefreshInterval,
			AllowedOrigins:  cfg.Dashboard.AllowedOrigins,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		if tn != nil {
			g.Go(func() error {
				tn.StartPolling(gctx, sched.HandleCommand)
				return nil
			})
		}

		sched.Start()
		defer sched.Stop()

		a.log.Info().Str("addr", addr).Msg("portfolio tracker serving")
		return g.Wait()
	})
}
