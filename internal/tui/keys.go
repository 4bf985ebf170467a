package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PageLeft  key.Binding
	PageRight key.Binding
	Edit      key.Binding
	Cancel    key.Binding
	Focus     key.Binding
	MarkerLo  key.Binding
	MarkerHi  key.Binding
	Fit       key.Binding
	Reset     key.Binding
	Export    key.Binding
	Picture   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "prev param")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next param")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left/h", "step down")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "step up")),
		PageLeft:  key.NewBinding(key.WithKeys("shift+left", "pgdown", "H"), key.WithHelp("pgdn", "page down")),
		PageRight: key.NewBinding(key.WithKeys("shift+right", "pgup", "L"), key.WithHelp("pgup", "page up")),
		Edit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "type value")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus markers")),
		MarkerLo:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "marker left")),
		MarkerHi:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "marker right")),
		Fit:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Export:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export xlsx")),
		Picture:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "save png")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Right, k.Edit, k.Fit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageLeft, k.PageRight},
		{k.Edit, k.Cancel, k.Reset},
		{k.Focus, k.MarkerLo, k.MarkerHi, k.Fit},
		{k.Export, k.Picture, k.Help, k.Quit},
	}
}

type imageKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultImageKeys() imageKeyMap {
	return imageKeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "row up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "row down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left/h", "col left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "col right")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k imageKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k imageKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Left, k.Right}, {k.Help, k.Quit}}
}
