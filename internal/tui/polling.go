package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// refreshTickMsg triggers a reload of every tab.
type refreshTickMsg struct{}

// scheduleRefresh returns a command that fires the next refresh tick, or
// nil when refreshing is disabled.
func scheduleRefresh(every time.Duration) tea.Cmd {
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}
