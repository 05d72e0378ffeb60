package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Run      key.Binding
	Open     key.Binding
	Save     key.Binding
	SaveAs   key.Binding
	ShowCode key.Binding
	Preview  key.Binding
	ClearLog key.Binding
	LogUp    key.Binding
	LogDown  key.Binding
	Close    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run:      key.NewBinding(key.WithKeys("ctrl+r", "f5"), key.WithHelp("ctrl+r", "run")),
		Open:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		SaveAs:   key.NewBinding(key.WithKeys("alt+s", "f12"), key.WithHelp("alt+s", "save as")),
		ShowCode: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "show code")),
		Preview:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "highlight")),
		ClearLog: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear log")),
		LogUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "log up")),
		LogDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "log down")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Open, k.Save, k.SaveAs, k.ShowCode, k.ClearLog, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.ShowCode, k.Preview},
		{k.Open, k.Save, k.SaveAs},
		{k.ClearLog, k.LogUp, k.LogDown},
		{k.Close, k.Quit},
	}
}
