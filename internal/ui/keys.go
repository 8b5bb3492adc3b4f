package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the progress view shortcuts
type KeyMap struct {
	Recent key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Recent: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "recent files"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns a brief help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Recent, k.Quit}
}
