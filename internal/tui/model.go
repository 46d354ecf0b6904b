// Package tui is the terminal dashboard: portfolio totals above a table of
// holdings or lots, refreshed on a timer.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"PortfolioTracker/internal/model"
)

// Source produces valuations. *tracker.Service satisfies it.
type Source interface {
	Valuate(ctx context.Context) (model.Valuation, error)
	Refresh()
}

type viewMode int

const (
	symbolsView viewMode = iota
	lotsView
)

type Model struct {
	ctx      context.Context
	source   Source
	currency string
	interval time.Duration

	// Data
	valuation *model.Valuation
	err       error
	loading   bool

	// UI state
	mode   viewMode
	width  int
	height int

	// Components
	table table.Model
}

// Messages

type valuationMsg struct {
	valuation model.Valuation
	err       error
}

type refreshMsg struct{}

// NewModel builds the dashboard. A non-positive interval disables the
// periodic refresh.
func NewModel(ctx context.Context, source Source, currency string, interval time.Duration) Model {
	t := table.New(
		table.WithColumns(symbolColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return Model{
		ctx:      ctx,
		source:   source,
		currency: currency,
		interval: interval,
		loading:  true,
		table:    t,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchValuation(m.ctx, m.source), scheduleRefresh(m.interval))
}

// Commands

func fetchValuation(ctx context.Context, s Source) tea.Cmd {
	return func() tea.Msg {
		v, err := s.Valuate(ctx)
		return valuationMsg{v, err}
	}
}

func forceRefresh(ctx context.Context, s Source) tea.Cmd {
	return func() tea.Msg {
		s.Refresh()
		v, err := s.Valuate(ctx)
		return valuationMsg{v, err}
	}
}

func scheduleRefresh(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}
