package ui

import "charm.land/bubbles/v2/key"

// KeyMap defines the editor key bindings.
type KeyMap struct {
	Up      key.Binding // previous candidate, or previous line
	Down    key.Binding // next candidate, or next line
	Accept  key.Binding // insert the selected candidate
	Dismiss key.Binding // close the dropdown
	Save    key.Binding
	Copy    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard editor bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev")),
		Down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
		Accept:  key.NewBinding(key.WithKeys("tab", "enter"), key.WithHelp("tab/enter", "insert")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		Help:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Dismiss, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Accept, k.Dismiss},
		{k.Save, k.Copy, k.Help, k.Quit},
	}
}
