package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Toggle  key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Toggle:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "symbols/lots")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh prices")),
}
