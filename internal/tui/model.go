// Package tui implements the Bubble Tea dashboard for remit.
package tui

import (
	"slices"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/core/notify"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/internal/tui/components"
	"github.com/colonyops/remit/internal/tui/views/invoices"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateShowingHelp
)

const keyCtrlC = "ctrl+c"

// Options configures the TUI behavior.
type Options struct {
	Build    BuildInfo // shown in the help dialog
	Warnings []string  // startup warnings displayed as toasts
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	app  *remit.App
	bus  *eventbus.EventBus
	keys KeyMap

	tabs   []invoices.View
	active int

	state      UIState
	helpDialog *components.HelpDialog
	build      BuildInfo

	notifications   *NotificationBuffer
	toastController *ToastController
	toastView       *ToastView
	warnings        []string

	width    int
	height   int
	quitting bool
}

// New creates the dashboard with one tab per invoice kind, opening on the
// configured default tab.
func New(app *remit.App, opts Options) Model {
	tabs := make([]invoices.View, 0, len(billing.Kinds))
	for _, kind := range billing.Kinds {
		tabs = append(tabs, invoices.New(app, kind))
	}

	active := slices.Index(billing.Kinds, app.Config.DefaultKind())
	if active < 0 {
		active = 0
	}

	toasts := NewToastController()
	buffer := NewNotificationBuffer()
	if app.Bus != nil {
		buffer.Subscribe(app.Bus)
	}

	return Model{
		app:             app,
		bus:             app.Bus,
		keys:            DefaultKeyMap(),
		tabs:            tabs,
		active:          active,
		build:           opts.Build,
		notifications:   buffer,
		toastController: toasts,
		toastView:       NewToastView(toasts),
		warnings:        opts.Warnings,
	}
}

// Init loads every tab and starts the background listeners.
func (m Model) Init() tea.Cmd {
	if m.bus != nil {
		m.bus.PublishTuiStarted(eventbus.TUIStartedPayload{})
	}

	cmds := make([]tea.Cmd, 0, len(m.tabs)+3)
	for _, tab := range m.tabs {
		cmds = append(cmds, tab.Init())
	}
	cmds = append(cmds, m.notifications.WaitForSignal())
	if cmd := scheduleRefresh(m.app.Config.List.RefreshInterval); cmd != nil {
		cmds = append(cmds, cmd)
	}

	for _, w := range m.warnings {
		m.toastController.Push(notify.Notification{Level: notify.LevelWarning, Message: w})
	}
	if cmd := m.ensureToastTick(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// ActiveKind returns the record kind of the selected tab.
func (m Model) ActiveKind() billing.Kind {
	return m.tabs[m.active].Kind()
}

// activeTab returns a pointer to the selected tab.
func (m *Model) activeTab() *invoices.View {
	return &m.tabs[m.active]
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case toastTickMsg:
		return m.handleToastTick(msg)
	case drainNotificationsMsg:
		return m.handleDrainNotifications()
	case refreshTickMsg:
		return m.handleRefreshTick()
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m.broadcast(msg)
}

// broadcast forwards msg to every tab. Tab messages carry their kind so
// only the owning tab reacts.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, len(m.tabs))
	for i := range m.tabs {
		var cmd tea.Cmd
		m.tabs[i], cmd = m.tabs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == keyCtrlC {
		return m.quit()
	}

	if m.state == stateShowingHelp {
		return m.handleHelpDialogKey(keyStr)
	}

	tab := m.activeTab()
	if tab.HasEditorFocus() {
		return m.delegateToTab(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case key.Matches(msg, m.keys.Help):
		return m.showHelpDialog()
	case key.Matches(msg, m.keys.DismissToast):
		m.toastController.DismissAll()
		return m, nil
	}
	return m.delegateToTab(msg)
}

func (m Model) delegateToTab(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.tabs[m.active], cmd = m.tabs[m.active].Update(msg)
	return m, cmd
}

// switchTab moves by delta tabs, wrapping, and reloads the new tab.
func (m Model) switchTab(delta int) (tea.Model, tea.Cmd) {
	n := len(m.tabs)
	m.active = ((m.active+delta)%n + n) % n
	log.Debug().Str("tab", string(m.ActiveKind())).Msg("switched tab")
	return m, m.tabs[m.active].Load()
}

// quit sets the quitting flag and emits tui.stopped.
func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.bus != nil {
		m.bus.PublishTuiStopped(eventbus.TUIStoppedPayload{})
	}
	return m, tea.Quit
}

// handleHelpDialogKey handles keys when the help dialog is shown.
func (m Model) handleHelpDialogKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "esc", "?", "q":
		m.state = stateNormal
		m.helpDialog = nil
	}
	return m, nil
}

// showHelpDialog builds the shortcut list from the active tab's bindings.
func (m Model) showHelpDialog() (tea.Model, tea.Cmd) {
	keys := m.activeTab().Keys()
	sections := []components.HelpDialogSection{
		components.SectionFromBindings("Navigation", keys.Navigation()...),
		components.SectionFromBindings("Selection", keys.Selection()...),
		components.SectionFromBindings("Actions", keys.Actions()...),
		components.SectionFromBindings("General", m.keys.Global()...),
	}

	title := "Keyboard Shortcuts"
	if v := m.build.String(); v != "" {
		title += " · remit " + v
	}

	m.helpDialog = components.NewHelpDialog(title, sections, m.width)
	m.state = stateShowingHelp
	return m, nil
}

// ensureToastTick starts the toast tick chain if toasts are showing and
// no chain is running. The chain stops itself once all toasts expire.
func (m *Model) ensureToastTick() tea.Cmd {
	if !m.toastController.HasToasts() || m.toastController.Ticking() {
		return nil
	}
	m.toastController.SetTicking(true)
	return scheduleToastTick()
}
