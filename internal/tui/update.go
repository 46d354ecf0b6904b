package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// chrome is the number of lines drawn around the table.
const chrome = 8

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := m.height - chrome; h > 3 {
			m.table.SetHeight(h)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			if m.mode == symbolsView {
				m.mode = lotsView
			} else {
				m.mode = symbolsView
			}
			m.rebuildTable()
			return m, nil
		case key.Matches(msg, keys.Refresh):
			m.loading = true
			return m, forceRefresh(m.ctx, m.source)
		}

	case refreshMsg:
		cmds = append(cmds, fetchValuation(m.ctx, m.source), scheduleRefresh(m.interval))

	case valuationMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			v := msg.valuation
			m.valuation = &v
			m.rebuildTable()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
