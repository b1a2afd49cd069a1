package form

import (
	"io"

	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/remit/internal/core/styles"
)

// maxVisible options show before the list pages.
const maxVisible = 8

// SelectField is a single-select field wrapping list.Model. Up and down
// (or k and j) move the selection and / filters the options. A blurred
// field shows only the chosen option.
type SelectField struct {
	list    list.Model
	options []string
	label   string
	focused bool
}

// selectDelegate renders one option per line with a cursor on the
// selected one.
type selectDelegate struct{}

func (d selectDelegate) Height() int                             { return 1 }
func (d selectDelegate) Spacing() int                            { return 0 }
func (d selectDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d selectDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(selectItem)
	if !ok {
		return
	}

	style := styles.TextForegroundStyle
	cursor := "  "
	if index == m.Index() {
		style = styles.SelectFieldItemSelectedStyle
		cursor = "> "
	}
	_, _ = io.WriteString(w, cursor)
	_, _ = io.WriteString(w, style.Render(item.label))
}

// NewSelectField creates a single-select field from static options.
// value pre-selects the matching option if found, otherwise the first.
func NewSelectField(label string, options []string, value string) *SelectField {
	items := make([]list.Item, len(options))
	selected := 0
	for i, opt := range options {
		items[i] = selectItem{label: opt, index: i}
		if opt == value {
			selected = i
		}
	}

	height := max(min(len(options), maxVisible), 1)
	l := list.New(items, selectDelegate{}, 40, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowPagination(len(options) > maxVisible)
	l.DisableQuitKeybindings()
	l.Styles.TitleBar = lipgloss.NewStyle()

	l.FilterInput.Prompt = "/ "
	st := textinput.DefaultStyles(true)
	st.Focused.Prompt = styles.TextPrimaryStyle
	st.Cursor.Color = styles.ColorPrimary
	l.FilterInput.SetStyles(st)

	if len(options) > 0 {
		l.Select(selected)
	}
	return &SelectField{list: l, options: options, label: label}
}

func (f *SelectField) Update(msg tea.Msg) (Field, tea.Cmd) {
	if !f.focused {
		return f, nil
	}
	var cmd tea.Cmd
	f.list, cmd = f.list.Update(msg)
	return f, cmd
}

func (f *SelectField) View() string {
	if len(f.options) == 0 {
		return frame(f.label, f.focused, styles.TextMutedStyle.Render("(no options)"))
	}
	if !f.focused {
		return frame(f.label, false, styles.TextForegroundStyle.Render(f.Value().(string)))
	}
	if f.list.SettingFilter() {
		return frame(f.label, true, lipgloss.JoinVertical(lipgloss.Left, f.list.FilterInput.View(), f.list.View()))
	}
	return frame(f.label, true, f.list.View())
}

func (f *SelectField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

// Blur drops any filter, keeping the chosen option, so the list shows
// every option again on the next focus.
func (f *SelectField) Blur() {
	f.focused = false
	if f.list.FilterState() != list.Unfiltered {
		value := f.Value()
		f.list.ResetFilter()
		f.selectValue(value)
	}
}

func (f *SelectField) selectValue(v any) {
	for i, opt := range f.options {
		if opt == v {
			f.list.Select(i)
			return
		}
	}
}

func (f *SelectField) Focused() bool { return f.focused }

func (f *SelectField) Value() any {
	if si, ok := f.list.SelectedItem().(selectItem); ok && si.index >= 0 && si.index < len(f.options) {
		return f.options[si.index]
	}
	return ""
}

func (f *SelectField) Label() string { return f.label }

// IsFiltering reports whether the filter input is being edited.
func (f *SelectField) IsFiltering() bool { return f.list.SettingFilter() }
