package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PortfolioTracker/internal/notifier"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/tracker"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Service   *tracker.Service
	Notifier  notifier.Notifier
	ReportDir string
	Report    report.Options
	Log       zerolog.Logger
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. A nil notifier drops messages.
func NewScheduler(ctx context.Context, svc *tracker.Service, n notifier.Notifier, reportDir string, opts report.Options, log zerolog.Logger) *Scheduler {
	if n == nil {
		n = notifier.Nop{}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Service:   svc,
		Notifier:  n,
		ReportDir: reportDir,
		Report:    opts,
		Log:       log,
		Ctx:       ctx,
	}
}

// RegisterAll registers the price refresh and report tasks. An empty
// expression leaves that task unscheduled.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if refreshCron != "" {
		if _, err := s.Cron.AddFunc(refreshCron, s.RunRefreshNow); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
		s.Log.Info().Str("cron", refreshCron).Msg("refresh task registered")
	}
	if reportCron != "" {
		if _, err := s.Cron.AddFunc(reportCron, s.RunReportNow); err != nil {
			return fmt.Errorf("register report task: %w", err)
		}
		s.Log.Info().Str("cron", reportCron).Msg("report task registered")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Int("tasks", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RunRefreshNow drops cached quotes and fetches every held symbol again.
func (s *Scheduler) RunRefreshNow() {
	s.Log.Info().Msg("running refresh task")
	s.Service.Refresh()
	v, err := s.Service.Valuate(s.Ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("refresh valuation")
		return
	}
	s.Log.Info().Int("symbols", len(v.Symbols)).Strs("unpriced", v.Unpriced).Msg("prices refreshed")
}

// RunReportNow writes the HTML report and sends the summary.
func (s *Scheduler) RunReportNow() {
	s.Log.Info().Msg("running report task")
	path, summary, err := s.writeReport(s.Ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("report task")
		s.trySend(notifier.FormatError("report", err))
		return
	}
	s.Log.Info().Str("path", path).Msg("report written")
	s.trySend(summary)
}

func (s *Scheduler) writeReport(ctx context.Context) (string, string, error) {
	v, err := s.Service.Valuate(ctx)
	if err != nil {
		return "", "", err
	}
	path, err := report.WriteHTML(s.ReportDir, v, s.Report)
	if err != nil {
		return "", "", err
	}
	return path, notifier.FormatSummary(v, s.Report.Currency), nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i] // "/summary@my_bot" in group chats
	}
	switch cmd {
	case "/summary":
		v, err := s.Service.Valuate(ctx)
		if err != nil {
			return notifier.FormatError("summary", err)
		}
		return notifier.FormatSummary(v, s.Report.Currency)
	case "/refresh":
		s.Service.Refresh()
		v, err := s.Service.Valuate(ctx)
		if err != nil {
			return notifier.FormatError("refresh", err)
		}
		return notifier.FormatSummary(v, s.Report.Currency)
	case "/report":
		path, _, err := s.writeReport(ctx)
		if err != nil {
			return notifier.FormatError("report", err)
		}
		return fmt.Sprintf("📄 Report written to <code>%s</code>", html.EscapeString(path))
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error().Err(err).Msg("send notification")
	}
}
