package form

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/remit/internal/core/styles"
)

var dialogKeys = struct {
	Next, Prev, Submit, Cancel, Enter key.Binding
}{
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
	Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Enter:  key.NewBinding(key.WithKeys("enter")),
}

// filterer is a field that takes every key while its filter is edited.
type filterer interface {
	IsFiltering() bool
}

// slot binds a field to the variable its value is read under.
type slot struct {
	name  string
	field Field
	rule  *FieldValidation
	err   string
}

// Dialog runs a column of fields. Tab and enter walk forward and submit
// past the last field; ctrl+s submits from anywhere; esc cancels. Enter
// inside a text area inserts a newline instead.
type Dialog struct {
	Title string

	slots     []slot
	at        int
	err       string
	submitted bool
	cancelled bool
}

// NewDialog pairs fields with names by position and focuses the first.
func NewDialog(title string, fields []Field, names []string) *Dialog {
	d := &Dialog{Title: title, slots: make([]slot, len(fields))}
	for i, f := range fields {
		d.slots[i] = slot{name: names[i], field: f}
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return d
}

// WithValidation checks the text field named name on submit.
func (d *Dialog) WithValidation(name string, v FieldValidation) *Dialog {
	if s := d.slot(name); s != nil {
		s.rule = &v
	}
	return d
}

func (d *Dialog) slot(name string) *slot {
	for i := range d.slots {
		if d.slots[i].name == name {
			return &d.slots[i]
		}
	}
	return nil
}

func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	if len(d.slots) == 0 {
		return d, nil
	}

	if kp, ok := msg.(tea.KeyPressMsg); ok && !d.focusedFiltering() {
		switch {
		case key.Matches(kp, dialogKeys.Cancel):
			d.cancelled = true
			return d, nil
		case key.Matches(kp, dialogKeys.Submit):
			return d, d.submit()
		case key.Matches(kp, dialogKeys.Prev):
			if d.at == 0 {
				return d, nil
			}
			return d, d.moveTo(d.at - 1)
		case key.Matches(kp, dialogKeys.Next):
			return d, d.forward()
		case key.Matches(kp, dialogKeys.Enter):
			if _, multiline := d.slots[d.at].field.(*TextAreaField); !multiline {
				return d, d.forward()
			}
		}
	}

	var cmd tea.Cmd
	d.slots[d.at].field, cmd = d.slots[d.at].field.Update(msg)
	return d, cmd
}

func (d *Dialog) focusedFiltering() bool {
	f, ok := d.slots[d.at].field.(filterer)
	return ok && f.IsFiltering()
}

func (d *Dialog) forward() tea.Cmd {
	if d.at == len(d.slots)-1 {
		return d.submit()
	}
	return d.moveTo(d.at + 1)
}

func (d *Dialog) moveTo(i int) tea.Cmd {
	d.slots[d.at].field.Blur()
	d.at = i
	return d.slots[i].field.Focus()
}

// submit validates every rule and focuses the first failing field.
func (d *Dialog) submit() tea.Cmd {
	d.err = ""
	bad := -1
	for i := range d.slots {
		s := &d.slots[i]
		s.err = ""
		text, isText := s.field.Value().(string)
		if s.rule == nil || !isText {
			continue
		}
		if s.err = s.rule.ValidateText(text); s.err != "" && bad < 0 {
			bad = i
		}
	}

	if bad >= 0 {
		return d.moveTo(bad)
	}
	d.submitted = true
	return nil
}

func (d *Dialog) View() string {
	rows := make([]string, 0, 3*len(d.slots)+3)
	for i, s := range d.slots {
		if i > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, s.field.View())
		if s.err != "" {
			rows = append(rows, styles.FormErrorStyle.Render("  "+s.field.Label()+": "+s.err))
		}
	}
	if d.err != "" {
		rows = append(rows, "", styles.FormErrorStyle.Render(d.err))
	}

	help := ""
	for i, b := range []key.Binding{dialogKeys.Next, dialogKeys.Prev, dialogKeys.Submit, dialogKeys.Cancel} {
		if i > 0 {
			help += "  "
		}
		help += b.Help().Key + ": " + b.Help().Desc
	}
	rows = append(rows, "", styles.TextMutedStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// FormValues maps every field name to its value.
func (d *Dialog) FormValues() map[string]any {
	out := make(map[string]any, len(d.slots))
	for _, s := range d.slots {
		out[s.name] = s.field.Value()
	}
	return out
}

// String is the value of a text or select field; "" for unknown names.
func (d *Dialog) String(name string) string {
	s, _ := d.lookup(name).(string)
	return s
}

// Bool is the value of a toggle field.
func (d *Dialog) Bool(name string) bool {
	b, _ := d.lookup(name).(bool)
	return b
}

func (d *Dialog) lookup(name string) any {
	if s := d.slot(name); s != nil {
		return s.field.Value()
	}
	return nil
}

func (d *Dialog) Submitted() bool { return d.submitted }
func (d *Dialog) Cancelled() bool { return d.cancelled }

// Fail reopens a submitted dialog showing err, for a submission the
// service rejected.
func (d *Dialog) Fail(err error) {
	d.submitted = false
	if err != nil {
		d.err = err.Error()
	}
}

// Err is the dialog-level error from the last Fail.
func (d *Dialog) Err() string { return d.err }
