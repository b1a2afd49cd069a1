package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/remit/internal/core/styles"
	"github.com/colonyops/remit/internal/tui/components"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes the screen: tab view, then any open dialog, then toasts.
func (m Model) render() string {
	mainView := m.renderTabView()

	// Ensure we have dimensions for modals
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	var content string
	switch {
	case m.state == stateShowingHelp && m.helpDialog != nil:
		content = m.helpDialog.Overlay(mainView, w, h)
	default:
		content = m.tabs[m.active].Overlay(mainView, w, h)
	}

	// Apply toast overlay on top of everything
	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}
	return content
}

// renderTabView renders the header, stats, active list and status line.
func (m Model) renderTabView() string {
	tabs := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		label := tab.Kind().Title()
		if i == m.active {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactiveStyle.Render(label))
		}
	}
	tabsLeft := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	branding := styles.TitleStyle.Render(styles.IconMoney + " " + m.app.Config.Clinic.Name)

	// Layout: [margin] tabs [spacer] branding [margin]
	margin := 1
	spacerWidth := max(m.width-lipgloss.Width(tabsLeft)-lipgloss.Width(branding)-(margin*2), 1)
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		components.Pad(margin), tabsLeft, components.Pad(spacerWidth), branding, components.Pad(margin),
	)

	dividerWidth := m.width
	if dividerWidth < 1 {
		dividerWidth = 80 // default width before WindowSizeMsg
	}
	divider := styles.TextMutedStyle.Render(strings.Repeat("─", dividerWidth))

	active := m.tabs[m.active]
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		divider,
		active.StatsView(),
		active.View(),
		divider,
		m.renderStatusLine(),
	)
}

// renderStatusLine shows the active tab's last status on the left and a
// short key hint on the right.
func (m Model) renderStatusLine() string {
	status, isErr := m.tabs[m.active].Status()
	left := styles.StatusLineStyle.Render(status)
	if isErr {
		left = styles.StatusErrorStyle.Render(styles.IconWarning + " " + status)
	}

	hint := styles.HelpStyle.Render("?: help  tab: switch  q: quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(hint)-2, 1)
	return " " + left + components.Pad(gap) + hint
}
