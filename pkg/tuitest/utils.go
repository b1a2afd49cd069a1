// Package tuitest builds key messages and normalizes rendered views for
// TUI tests.
package tuitest

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI drops escape codes, trailing spaces on each line and trailing
// blank lines so assertions compare plain text.
func StripANSI(s string) string {
	lines := strings.Split(ansi.Strip(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func press(code rune, mod tea.KeyMod) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: mod}
}

// KeyPress is a bare key code with no text, as sent for space or keys
// matched by code.
func KeyPress(r rune) tea.Msg { return press(r, 0) }

// KeyText is a typed printable rune.
func KeyText(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// TypeText types s one rune at a time.
func TypeText(s string) []tea.Msg {
	var msgs []tea.Msg
	for _, r := range s {
		msgs = append(msgs, KeyText(r))
	}
	return msgs
}

func KeyCtrl(r rune) tea.Msg { return press(r, tea.ModCtrl) }
func KeyEsc() tea.Msg        { return press(tea.KeyEscape, 0) }
func KeyTab() tea.Msg        { return press(tea.KeyTab, 0) }
func KeyEnter() tea.Msg      { return press(tea.KeyEnter, 0) }
func KeyDown() tea.Msg       { return press(tea.KeyDown, 0) }

func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}
