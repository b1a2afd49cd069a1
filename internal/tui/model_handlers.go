package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
)

// chromeHeight is the rows taken by the header, stats cards and status line.
const chromeHeight = 9

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	for i := range m.tabs {
		m.tabs[i].SetSize(msg.Width, max(msg.Height-chromeHeight, 1))
	}
	if m.helpDialog != nil {
		return m.showHelpDialog()
	}
	return m, nil
}

func (m Model) handleToastTick(_ toastTickMsg) (tea.Model, tea.Cmd) {
	m.toastController.Tick(toastTickInterval)
	if m.toastController.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastController.SetTicking(false)
	return m, nil
}

// handleDrainNotifications moves buffered notifications onto the toast
// stack and waits for the next signal.
func (m Model) handleDrainNotifications() (tea.Model, tea.Cmd) {
	for _, n := range m.notifications.Drain() {
		log.Debug().Str("level", string(n.Level)).Str("message", n.Message).Msg("notification")
		m.toastController.Push(n)
	}
	return m, tea.Batch(m.notifications.WaitForSignal(), m.ensureToastTick())
}

// handleRefreshTick reloads every tab unless the operator is mid-edit,
// then schedules the next tick.
func (m Model) handleRefreshTick() (tea.Model, tea.Cmd) {
	next := scheduleRefresh(m.app.Config.List.RefreshInterval)
	if m.activeTab().HasEditorFocus() {
		return m, next
	}

	cmds := make([]tea.Cmd, 0, len(m.tabs)+1)
	for _, tab := range m.tabs {
		cmds = append(cmds, tab.Load())
	}
	cmds = append(cmds, next)
	return m, tea.Batch(cmds...)
}
