// Package components provides reusable TUI components.
package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/remit/internal/core/styles"
)

const helpKeyWidth = 12

// HelpEntry is a single keyboard shortcut.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialogSection groups related entries under a title.
type HelpDialogSection struct {
	Title   string
	Entries []HelpEntry
}

// SectionFromBindings builds a section from key bindings, skipping
// disabled ones.
func SectionFromBindings(title string, bindings ...key.Binding) HelpDialogSection {
	s := HelpDialogSection{Title: title}
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		s.Entries = append(s.Entries, HelpEntry{Key: h.Key, Desc: h.Desc})
	}
	return s
}

// HelpDialog lists the keyboard shortcuts in columns of sections.
type HelpDialog struct {
	title    string
	sections []HelpDialogSection
	width    int
}

// NewHelpDialog creates a help dialog. Sections are laid out side by side
// while they fit in width, then wrap onto a new row.
func NewHelpDialog(title string, sections []HelpDialogSection, width int) *HelpDialog {
	return &HelpDialog{title: title, sections: sections, width: width}
}

// View renders the dialog.
func (h *HelpDialog) View() string {
	columns := make([]string, 0, len(h.sections))
	for _, s := range h.sections {
		columns = append(columns, renderSection(s))
	}

	body := h.layout(columns)
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TextForegroundBoldStyle.Render(h.title),
		"",
		body,
		styles.HelpDialogHelpStyle.Render("esc/? close"),
	)
	return styles.HelpDialogModalStyle.Render(content)
}

func (h *HelpDialog) layout(columns []string) string {
	// border plus horizontal padding of the modal
	avail := h.width - 8
	if avail <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left, columns...)
	}

	var rows []string
	var row []string
	rowWidth := 0
	for _, c := range columns {
		w := lipgloss.Width(c) + 3
		if len(row) > 0 && rowWidth+w > avail {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, c+Pad(3))
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n\n")
}

func renderSection(s HelpDialogSection) string {
	lines := make([]string, 0, len(s.Entries)+2)
	if s.Title != "" {
		lines = append(lines,
			styles.HelpDialogSectionStyle.Render(s.Title),
			styles.TextMutedStyle.Render(strings.Repeat("─", 25)),
		)
	}
	for _, e := range s.Entries {
		lines = append(lines, formatKeyDesc(e.Key, e.Desc))
	}
	return strings.Join(lines, "\n")
}

// Overlay renders the dialog centered over background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	modal := h.View()

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)
	modalLayer.
		X(max((width-lipgloss.Width(modal))/2, 0)).
		Y(max((height-lipgloss.Height(modal))/2, 0)).
		Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}

// formatKeyDesc pads the key to a fixed display width so descriptions line up.
func formatKeyDesc(key, desc string) string {
	padded := key + Pad(helpKeyWidth-lipgloss.Width(key))
	return styles.TextPrimaryBoldStyle.Render(padded) + styles.TextForegroundStyle.Render(desc)
}
