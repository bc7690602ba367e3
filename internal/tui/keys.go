package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Enter  key.Binding
	Back   key.Binding
	Dim    key.Binding
	Color  key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "zoom in")),
	Back:   key.NewBinding(key.WithKeys("backspace", "u", "esc"), key.WithHelp("u/⌫", "zoom out")),
	Dim:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "cycle dimension")),
	Color:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "color mode")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Back, k.Dim, k.Color, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.Next},
		{k.Enter, k.Back},
		{k.Dim, k.Color, k.Reload},
		{k.Help, k.Quit},
	}
}
