package form

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/remit/internal/core/styles"
)

const defaultFieldWidth = 48

// TextField is a single-line input.
type TextField struct {
	entry[textinput.Model, *textinput.Model]
}

func NewTextField(label, placeholder, value string) *TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.SetWidth(defaultFieldWidth)
	ti.SetValue(value)

	muted := lipgloss.NewStyle().Foreground(styles.ColorMuted)
	st := textinput.DefaultStyles(true)
	st.Cursor.Color = styles.ColorPrimary
	st.Focused.Placeholder = muted
	st.Blurred.Placeholder = muted
	ti.SetStyles(st)

	f := &TextField{}
	f.model, f.label = ti, label
	return f
}

// WithCharLimit caps the input length.
func (f *TextField) WithCharLimit(n int) *TextField {
	f.model.CharLimit = n
	return f
}

func (f *TextField) Update(msg tea.Msg) (Field, tea.Cmd) { return f, f.update(msg) }
