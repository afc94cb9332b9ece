package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	count   key.Binding
	del     key.Binding
	open    key.Binding
	toggle  key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	help    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		count:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "count a URL")),
		del:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		toggle:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle stop words")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "results")),
		help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.count, k.del, k.open, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.count, k.del, k.open, k.toggle},
		{k.yes, k.no, k.restart, k.help, k.quit},
	}
}
