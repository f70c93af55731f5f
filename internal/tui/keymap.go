package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the scope UI.
type KeyMap struct {
	Toggle    key.Binding
	Mode      key.Binding
	Loop      key.Binding
	Record    key.Binding
	LevelUp   key.Binding
	LevelDown key.Binding
	SeekBack  key.Binding
	SeekFwd   key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "start/stop"),
		),
		Mode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "live/file"),
		),
		Loop: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "loop"),
		),
		Record: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "record"),
		),
		LevelUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "level up"),
		),
		LevelDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "level down"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "seek back"),
		),
		SeekFwd: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "seek forward"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the short help bindings.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Mode, k.Record, k.Quit}
}

// FullHelp returns the full help bindings.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Mode, k.Loop, k.Record},
		{k.LevelUp, k.LevelDown, k.SeekBack, k.SeekFwd},
		{k.Quit, k.ForceQuit},
	}
}
