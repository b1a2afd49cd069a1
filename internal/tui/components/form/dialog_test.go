package form

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyTab      = tea.KeyPressMsg{Code: tea.KeyTab}
	keyShiftTab = tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	keyEnter    = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyEsc      = tea.KeyPressMsg{Code: tea.KeyEscape}
	keySubmit   = tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
)

func press(d *Dialog, msgs ...tea.Msg) {
	for _, m := range msgs {
		d.Update(m)
	}
}

// focusedLabel returns the label of the single focused field.
func focusedLabel(t *testing.T, fields ...Field) string {
	t.Helper()
	label := ""
	for _, f := range fields {
		if f.Focused() {
			require.Empty(t, label, "two fields focused")
			label = f.Label()
		}
	}
	return label
}

func paymentDialog() (*Dialog, []Field) {
	fields := []Field{
		NewTextField("Amount paid", "0.00", "285.50"),
		NewSelectField("Method", []string{"Cash", "EFTPOS"}, "Cash"),
		NewTextAreaField("Notes", "", "", 3),
	}
	return NewDialog("Mark paid", fields, []string{"amount", "method", "notes"}), fields
}

func TestDialog_Focus(t *testing.T) {
	d, fields := paymentDialog()
	assert.Equal(t, "Amount paid", focusedLabel(t, fields...))

	press(d, keyTab)
	assert.Equal(t, "Method", focusedLabel(t, fields...))

	press(d, keyShiftTab, keyShiftTab)
	assert.Equal(t, "Amount paid", focusedLabel(t, fields...), "shift+tab stops at the first field")

	press(d, keyEnter, keyEnter)
	assert.Equal(t, "Notes", focusedLabel(t, fields...))

	press(d, keyEnter)
	assert.Equal(t, "Notes", focusedLabel(t, fields...), "enter stays in a text area")
	assert.False(t, d.Submitted())

	press(d, keyTab)
	assert.True(t, d.Submitted(), "tab past the last field submits")
}

func TestDialog_FilteringSelect(t *testing.T) {
	d, fields := paymentDialog()
	method := fields[1].(*SelectField)

	press(d, keyTab, tea.KeyPressMsg{Code: '/', Text: "/"})
	require.True(t, method.IsFiltering())

	press(d, keyEsc)
	assert.False(t, d.Cancelled(), "esc leaves the filter first")
	assert.False(t, method.IsFiltering())
	assert.Equal(t, "Method", focusedLabel(t, fields...))

	press(d, keyEsc)
	assert.True(t, d.Cancelled())
}

func TestDialog_SubmitAndCancel(t *testing.T) {
	d, _ := paymentDialog()
	press(d, keySubmit)
	assert.True(t, d.Submitted(), "ctrl+s submits from the first field")

	d, _ = paymentDialog()
	press(d, keyEsc)
	assert.True(t, d.Cancelled())
	assert.False(t, d.Submitted())

	single := NewDialog("One", []Field{NewTextField("A", "", "")}, []string{"a"})
	press(single, keyEnter)
	assert.True(t, single.Submitted(), "enter on the last text field submits")
}

func TestDialog_Empty(t *testing.T) {
	d := NewDialog("Empty", nil, nil)
	press(d, keyTab, keyEnter, keySubmit)
	assert.False(t, d.Submitted())
	assert.Empty(t, d.FormValues())
	assert.Contains(t, ansi.Strip(d.View()), "tab: next")
}

func TestDialog_Values(t *testing.T) {
	fields := []Field{
		NewTextField("Name", "", "Alice"),
		NewToggleField("Weekends", "Skip weekends", true),
	}
	d := NewDialog("Rules", fields, []string{"name", "weekends"})

	assert.Equal(t, map[string]any{"name": "Alice", "weekends": true}, d.FormValues())
	assert.Equal(t, "Alice", d.String("name"))
	assert.True(t, d.Bool("weekends"))
	assert.Empty(t, d.String("missing"))
	assert.False(t, d.Bool("name"), "wrong type reads as zero")
}

func TestDialog_Validation(t *testing.T) {
	note := NewTextField("Note", "", "")
	amount := NewTextField("Amount", "", "")
	d := NewDialog("Pay", []Field{note, amount}, []string{"note", "amount"}).
		WithValidation("amount", FieldValidation{Required: true}).
		WithValidation("nope", FieldValidation{Required: true})

	press(d, keyTab, keyTab)
	assert.False(t, d.Submitted())
	assert.True(t, amount.Focused(), "focus moves to the invalid field")
	assert.Contains(t, ansi.Strip(d.View()), "Amount: required")

	amount.SetValue("12.00")
	press(d, keySubmit)
	assert.True(t, d.Submitted())
	assert.NotContains(t, ansi.Strip(d.View()), "required")
}

func TestDialog_Fail(t *testing.T) {
	d, _ := paymentDialog()
	press(d, keySubmit)
	require.True(t, d.Submitted())

	d.Fail(errors.New("invoice is already paid"))
	assert.False(t, d.Submitted())
	assert.Equal(t, "invoice is already paid", d.Err())

	view := ansi.Strip(d.View())
	assert.Contains(t, view, "invoice is already paid")
	assert.Contains(t, view, "Amount paid")
	assert.Contains(t, view, "ctrl+s: submit")

	press(d, keySubmit)
	assert.Empty(t, d.Err(), "resubmitting clears the error")
}
