package tui

import "charm.land/bubbles/v2/key"

// KeyMap holds the dashboard-wide bindings. They only apply while the
// active tab is not capturing input.
type KeyMap struct {
	Quit         key.Binding
	NextTab      key.Binding
	PrevTab      key.Binding
	Help         key.Binding
	DismissToast key.Binding
}

// DefaultKeyMap returns the default global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", keyCtrlC),
			key.WithHelp("q", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "keyboard shortcuts"),
		),
		DismissToast: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "dismiss notifications"),
		),
	}
}

// Global returns the bindings listed in the help dialog.
func (k KeyMap) Global() []key.Binding {
	return []key.Binding{k.NextTab, k.PrevTab, k.Help, k.DismissToast, k.Quit}
}
