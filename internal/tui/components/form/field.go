// Package form provides the field types and the dialog container used by
// the invoice action dialogs.
package form

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/remit/internal/core/styles"
)

// Field is the interface implemented by all form field types.
type Field interface {
	Update(msg tea.Msg) (Field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Value() any    // string for text/textarea/select, bool for toggles
	Label() string // Display label for the field
}

// editor is the method set shared by textinput.Model and textarea.Model.
type editor[M any] interface {
	*M
	Update(tea.Msg) (M, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Value() string
	SetValue(string)
}

// entry holds the focus and label bookkeeping for a bubbles text model.
type entry[M any, P editor[M]] struct {
	model   M
	label   string
	focused bool
}

func (e *entry[M, P]) ed() P { return P(&e.model) }

func (e *entry[M, P]) update(msg tea.Msg) tea.Cmd {
	if !e.focused {
		return nil
	}
	var cmd tea.Cmd
	e.model, cmd = e.ed().Update(msg)
	return cmd
}

func (e *entry[M, P]) View() string { return frame(e.label, e.focused, e.ed().View()) }

func (e *entry[M, P]) Focus() tea.Cmd {
	e.focused = true
	return e.ed().Focus()
}

func (e *entry[M, P]) Blur() {
	e.focused = false
	e.ed().Blur()
}

// SetValue replaces the text.
func (e *entry[M, P]) SetValue(s string) { e.ed().SetValue(s) }

func (e *entry[M, P]) Focused() bool { return e.focused }
func (e *entry[M, P]) Value() any    { return e.ed().Value() }
func (e *entry[M, P]) Label() string { return e.label }

// frame renders a field body under its label with the focus border.
func frame(label string, focused bool, body string) string {
	titleStyle := styles.TextMutedStyle
	borderStyle := styles.FormFieldStyle
	if focused {
		titleStyle = styles.FormTitleStyle
		borderStyle = styles.FormFieldFocusedStyle
	}
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(label), body))
}
