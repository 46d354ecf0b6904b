package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/config"
	"PortfolioTracker/internal/csvio"
	"PortfolioTracker/internal/logger"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/storage"
	"PortfolioTracker/internal/tracker"
)

var configPath = flag.String("config", "", "Path to the YAML config file. Defaults to $CONFIG_PATH, then "+config.DefaultPath+".")

// app holds what every command needs: config, logger, store and the
// valuation service built on top of them.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store storage.Backend
	svc   *tracker.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Database.Driver,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresURL: cfg.Database.PostgresURL,
	}, logger.Component(log, "storage"))
	if err != nil {
		return nil, err
	}

	fetcher := newFetcher(cfg, log)
	log.Debug().Str("source", fetcher.Name()).Msg("quote source selected")

	col := collector.NewCollector(fetcher, collector.NewPriceCache(cfg.Quotes.TTL, nil), store, logger.Component(log, "collector"))
	col.Concurrency = cfg.Quotes.Concurrency

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		svc:   tracker.New(store, col, logger.Component(log, "tracker"), nil),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close store")
	}
}

func (a *app) reportOptions() report.Options {
	return report.Options{Title: a.cfg.Report.Title, Currency: a.cfg.Report.Currency}
}

func newFetcher(cfg *config.Config, log zerolog.Logger) collector.Fetcher {
	var f collector.Fetcher
	switch cfg.Quotes.Source {
	case "static":
		// Offline source; retrying a map lookup is pointless.
		return collector.NewStaticFetcher(cfg.Quotes.Static)
	case "rest":
		f = collector.NewRESTFetcher(cfg.Quotes.BaseURL, cfg.Quotes.APIKey, cfg.Quotes.PricePath, cfg.Proxy)
	default:
		f = collector.NewYahooFetcher(cfg.Quotes.BaseURL, cfg.Proxy)
	}
	return collector.NewRetryFetcher(f, cfg.Quotes.Retries, logger.Component(log, "collector"))
}

// withApp opens the app, runs fn and maps its error to an exit status.
func withApp(ctx context.Context, fn func(a *app) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	return exitStatus(fn(a))
}

func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var lineErr *csvio.LineError
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, storage.ErrValidation),
		errors.Is(err, csvio.ErrMissingColumn),
		errors.Is(err, csvio.ErrEmpty),
		errors.As(err, &lineErr):
		return subcommands.ExitUsageError
	default:
		return subcommands.ExitFailure
	}
}

var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
