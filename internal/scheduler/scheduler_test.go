package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/collector"
	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/storage"
	"PortfolioTracker/internal/tracker"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

func setup(t *testing.T) (*Scheduler, *collector.StaticFetcher, *recordingNotifier) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	fetcher := collector.NewStaticFetcher(map[string]float64{"AAPL": 180})
	col := collector.NewCollector(fetcher, collector.NewPriceCache(time.Hour, nil), nil, zerolog.Nop())
	svc := tracker.New(store, col, zerolog.Nop(), nil)
	_, err := svc.AddPosition(ctx, model.Position{Symbol: "AAPL", Shares: 10, CostPerShare: 150, TradeDate: "2024-01-02"})
	require.NoError(t, err)

	n := &recordingNotifier{}
	s := NewScheduler(ctx, svc, n, t.TempDir(), report.Options{Currency: "USD"}, zerolog.Nop())
	return s, fetcher, n
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := setup(t)
	require.NoError(t, s.RegisterAll("0 */5 * * * *", ""))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron", ""))
	assert.Error(t, s.RegisterAll("", "61 * * * * *"))
}

func TestStartStop(t *testing.T) {
	s, _, _ := setup(t)
	require.NoError(t, s.RegisterAll("0 0 * * * *", "0 0 18 * * 1-5"))
	s.Start()
	s.Stop()
}

func TestRunReportNow(t *testing.T) {
	s, _, n := setup(t)
	s.RunReportNow()

	_, err := os.Stat(filepath.Join(s.ReportDir, report.PageFile))
	require.NoError(t, err)
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "Value: $1,800.00")
}

func TestRunRefreshNow(t *testing.T) {
	s, fetcher, _ := setup(t)
	s.RunRefreshNow()
	fetcher.SetPrice("AAPL", 200)
	s.RunRefreshNow()
	assert.Equal(t, 2, fetcher.Calls("AAPL"))
}

func TestHandleCommand(t *testing.T) {
	s, fetcher, _ := setup(t)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/summary"), "$1,800.00")

	fetcher.SetPrice("AAPL", 200)
	assert.Contains(t, s.HandleCommand(ctx, "/summary@portfolio_bot"), "$1,800.00", "cached")
	assert.Contains(t, s.HandleCommand(ctx, "/refresh"), "$2,000.00")

	reply := s.HandleCommand(ctx, "/report now")
	assert.Contains(t, reply, report.PageFile)

	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/summary")
	assert.Contains(t, s.HandleCommand(ctx, ""), "/summary")
}
