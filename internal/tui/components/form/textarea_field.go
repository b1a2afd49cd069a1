package form

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

const textAreaCharLimit = 2000

// TextAreaField is a multi-line input. Enter inserts a newline; the
// dialog submits with ctrl+s.
type TextAreaField struct {
	entry[textarea.Model, *textarea.Model]
}

// NewTextAreaField shows height lines, at least two.
func NewTextAreaField(label, placeholder, value string, height int) *TextAreaField {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = textAreaCharLimit
	ta.SetHeight(max(height, 2))
	ta.SetWidth(defaultFieldWidth)
	ta.SetValue(value)

	f := &TextAreaField{}
	f.model, f.label = ta, label
	return f
}

func (f *TextAreaField) Update(msg tea.Msg) (Field, tea.Cmd) { return f, f.update(msg) }
