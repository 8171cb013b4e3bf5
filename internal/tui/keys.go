package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Refresh key.Binding
	Tail    key.Binding
	Level   key.Binding
	Clear   key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Tail:    key.NewBinding(key.WithKeys("t", "f"), key.WithHelp("t", "tail")),
	Level:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "level")),
	Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{k.Refresh, k.Tail, k.Level, k.Clear, k.Top, k.Bottom, k.Quit}
}
