// internal/tui/keys.go
//
// Key bindings for the terminal board. Rendered by the bubbles help view.

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Pick   key.Binding
	Submit key.Binding
	Reset  key.Binding
	Round  key.Binding
	Reveal key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys(debug bool) keyMap {
	k := keyMap{
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev slot")),
		Right:  key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next slot")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "next color")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "prev color")),
		Pick:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "pick color")),
		Submit: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "submit")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset board")),
		Round:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new round")),
		Reveal: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "show secret")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
	k.Reveal.SetEnabled(debug)
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pick, k.Submit, k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Pick, k.Submit, k.Reset, k.Round},
		{k.Reveal, k.Help, k.Quit},
	}
}
