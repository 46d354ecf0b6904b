package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/config"
	"PortfolioTracker/internal/csvio"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/storage"
)

func useConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`database:
  driver: sqlite
  sqlite_path: %s
quotes:
  source: static
  static:
    AAPL: 180
report:
  dir: %s
log:
  level: disabled
`, filepath.Join(dir, "portfolio.db"), filepath.Join(dir, "report"))
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	old := *configPath
	*configPath = path
	t.Cleanup(func() { *configPath = old })
	return dir
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestCommands(t *testing.T) {
	dir := useConfig(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{}, "-symbol", "aapl", "-shares", "10", "-price", "150", "-date", "2024-01-02"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, "-shares", "1"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, "-symbol", "X", "-shares", "-1", "-price", "1"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, "-symbol", "X", "-shares", "1", "-price", "1", "-date", "01/02/2024"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, "-symbol", "AAPL"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, "-symbol", "AAPL", "-shares", "5"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, "-symbol", "AAPL", "-price", "5"))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &listCmd{}))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &viewCmd{}))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &refreshCmd{}))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &reportCmd{}))
	_, err := os.Stat(filepath.Join(dir, "report", report.PageFile))
	assert.NoError(t, err)

	csvPath := filepath.Join(dir, "more.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("symbol,shares,cost_per_share,trade_date\nMSFT,2,300,2024-02-01\n"), 0o644))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, csvPath))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &importCmd{}))

	out := filepath.Join(dir, "out.csv")
	assert.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{}, "-o", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "symbol,shares,cost_per_share,trade_date,note\nAAPL,10,150,2024-01-02,\nMSFT,2,300,2024-02-01,\n", string(data))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &deleteCmd{}, "-id", "1"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &deleteCmd{}, "-id", "1"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &deleteCmd{}))
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, subcommands.ExitSuccess, exitStatus(nil))
	assert.Equal(t, subcommands.ExitUsageError, exitStatus(&storage.ValidationError{Field: "symbol", Reason: "required"}))
	assert.Equal(t, subcommands.ExitUsageError, exitStatus(fmt.Errorf("import: %w", &csvio.LineError{Line: 2, Err: assert.AnError})))
	assert.Equal(t, subcommands.ExitUsageError, exitStatus(usageError("bad flag")))
	assert.Equal(t, subcommands.ExitFailure, exitStatus(storage.ErrNotFound))
	assert.Equal(t, subcommands.ExitFailure, exitStatus(storage.ErrUnavailable))
}

func TestNewFetcher(t *testing.T) {
	cfg := &config.Config{}
	cfg.Quotes.Source = "static"
	_, ok := newFetcher(cfg, testLogger()).(*collector.StaticFetcher)
	assert.True(t, ok)

	cfg.Quotes.Source = "rest"
	cfg.Quotes.BaseURL = "http://quotes.local"
	f := newFetcher(cfg, testLogger())
	assert.IsType(t, &collector.RetryFetcher{}, f)
	assert.Equal(t, "rest", f.Name())

	cfg.Quotes.Source = "yahoo"
	assert.Equal(t, "yahoo", newFetcher(cfg, testLogger()).Name())
}

func testLogger() zerolog.Logger { return zerolog.Nop() }
