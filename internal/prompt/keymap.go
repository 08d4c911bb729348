package prompt

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds keys to prompt operations.
type KeyMap struct {
	Confirm    key.Binding
	Cancel     key.Binding
	DeleteChar key.Binding
	DeleteWord key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	WordLeft   key.Binding
	WordRight  key.Binding
	Home       key.Binding
	End        key.Binding
}

// DefaultKeyMap returns emacs-style bindings alongside the arrow keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter", "ctrl+j"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "cancel"),
		),
		DeleteChar: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "delete character"),
		),
		DeleteWord: key.NewBinding(
			key.WithKeys("ctrl+h", "alt+backspace", "ctrl+w"),
			key.WithHelp("ctrl+w", "delete word"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑/ctrl+p", "previous item"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓/ctrl+n", "next item"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "ctrl+b"),
			key.WithHelp("←/ctrl+b", "character left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "ctrl+f"),
			key.WithHelp("→/ctrl+f", "character right"),
		),
		WordLeft: key.NewBinding(
			key.WithKeys("ctrl+left", "alt+left", "alt+b"),
			key.WithHelp("alt+b", "word left"),
		),
		WordRight: key.NewBinding(
			key.WithKeys("ctrl+right", "alt+right", "alt+f"),
			key.WithHelp("alt+f", "word right"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "ctrl+a"),
			key.WithHelp("ctrl+a", "start of line"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "ctrl+e"),
			key.WithHelp("ctrl+e", "end of line"),
		),
	}
}
