package form

import (
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/remit/internal/core/styles"
)

// ToggleField is a boolean checkbox toggled with space or x.
type ToggleField struct {
	label   string
	text    string
	on      bool
	focused bool
}

// NewToggleField creates a checkbox with a caption.
func NewToggleField(label, text string, on bool) *ToggleField {
	return &ToggleField{label: label, text: text, on: on}
}

func (f *ToggleField) Update(msg tea.Msg) (Field, tea.Cmd) {
	if !f.focused {
		return f, nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "space", "x":
			f.on = !f.on
		}
	}
	return f, nil
}

func (f *ToggleField) View() string {
	box := styles.IconCheckboxOff
	if f.on {
		box = styles.IconCheckboxOn
	}
	style := styles.TextForegroundStyle
	if f.focused {
		style = styles.SelectFieldItemSelectedStyle
	}
	return frame(f.label, f.focused, style.Render(box+" "+f.text))
}

func (f *ToggleField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *ToggleField) Blur()         { f.focused = false }
func (f *ToggleField) Focused() bool { return f.focused }
func (f *ToggleField) Value() any    { return f.on }
func (f *ToggleField) Label() string { return f.label }
