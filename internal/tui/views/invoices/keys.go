package invoices

import "charm.land/bubbles/v2/key"

// KeyMap defines the key bindings of an invoice list.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Search     key.Binding
	Status     key.Binding
	PageSize   key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Toggle     key.Binding
	ToggleAll  key.Binding
	ShowPaid   key.Binding
	Overdue    key.Binding
	FollowUp   key.Binding
	Rules      key.Binding
	MarkPaid   key.Binding
	Email      key.Binding
	Info       key.Binding
	Export     key.Binding
	Refresh    key.Binding
	ClearMarks key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         newBinding([]string{"up", "k"}, "move up", "↑/k"),
		Down:       newBinding([]string{"down", "j"}, "move down", "↓/j"),
		Search:     newBinding([]string{"/"}, "search patient or ID", "/"),
		Status:     newBinding([]string{"s"}, "cycle status filter", "s"),
		PageSize:   newBinding([]string{"z"}, "cycle page size", "z"),
		NextPage:   newBinding([]string{"right", "]"}, "next page", "→/]"),
		PrevPage:   newBinding([]string{"left", "["}, "previous page", "←/["),
		Toggle:     newBinding([]string{"space"}, "select row", "space"),
		ToggleAll:  newBinding([]string{"a"}, "select all on page", "a"),
		ShowPaid:   newBinding([]string{"P"}, "show paid claims", "P"),
		Overdue:    newBinding([]string{"d"}, "cycle days overdue", "d"),
		FollowUp:   newBinding([]string{"f"}, "follow up", "f"),
		Rules:      newBinding([]string{"r"}, "set sequence rules", "r"),
		MarkPaid:   newBinding([]string{"p"}, "mark as paid", "p"),
		Email:      newBinding([]string{"e"}, "email case manager", "e"),
		Info:       newBinding([]string{"enter"}, "patient info", "enter"),
		Export:     newBinding([]string{"o"}, "write statement PDF", "o"),
		Refresh:    newBinding([]string{"ctrl+r"}, "reload", "ctrl+r"),
		ClearMarks: newBinding([]string{"x"}, "clear selection", "x"),
	}
}

// Navigation returns the list navigation bindings.
func (k KeyMap) Navigation() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PrevPage, k.NextPage, k.Search, k.Status, k.Overdue, k.PageSize, k.ShowPaid, k.Refresh}
}

// Selection returns the selection bindings.
func (k KeyMap) Selection() []key.Binding {
	return []key.Binding{k.Toggle, k.ToggleAll, k.ClearMarks}
}

// Actions returns the per-row action bindings.
func (k KeyMap) Actions() []key.Binding {
	return []key.Binding{k.Info, k.FollowUp, k.Rules, k.MarkPaid, k.Email, k.Export}
}

func newBinding(keys []string, help, display string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(display, help),
	)
}
