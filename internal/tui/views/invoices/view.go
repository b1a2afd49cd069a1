package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/listing"
	"github.com/colonyops/remit/internal/core/styles"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/internal/tui/components/form"
)

const defaultTimeout = 5 * time.Second

// recordsLoadedMsg carries a reload of one tab's invoices and stats.
type recordsLoadedMsg struct {
	kind     billing.Kind
	invoices []billing.Invoice
	stats    billing.Stats
	err      error
}

// pending names the dialog a fetch was started for. A loaded message is
// applied only while that dialog is still open on the same invoice.
type pending struct {
	dialog    Dialog
	invoiceID string
}

// ruleLoadedMsg opens the rules dialog once the saved rule is known.
type ruleLoadedMsg struct {
	kind billing.Kind
	pending
	rule billing.SequenceRule
	err  error
}

// draftLoadedMsg opens the email dialog with a prefilled draft.
type draftLoadedMsg struct {
	kind billing.Kind
	pending
	draft billing.EmailDraft
	err   error
}

// infoLoadedMsg opens the patient info modal.
type infoLoadedMsg struct {
	kind billing.Kind
	pending
	markdown string
	err      error
}

// actionDoneMsg reports the result of a submitted dialog, or of an export
// when dialog is DialogClosed.
type actionDoneMsg struct {
	kind   billing.Kind
	dialog Dialog
	status string
	err    error
}

// View is the Bubble Tea sub-model for one invoice tab.
type View struct {
	ctrl    *Controller
	keys    KeyMap
	app     *remit.App
	now     func() time.Time
	timeout time.Duration

	search textinput.Model
	form   *form.Dialog
	info   *InfoModal
	busy   bool

	stats     billing.Stats
	loaded    bool
	status    string
	statusErr bool

	width  int
	height int
}

// New creates the view for one record kind.
func New(app *remit.App, kind billing.Kind) View {
	return View{
		ctrl:    NewController(kind, app.Config.List.PageSize),
		keys:    DefaultKeyMap(),
		search:  newSearchInput(),
		app:     app,
		now:     time.Now,
		timeout: defaultTimeout,
	}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Search: "
	st := textinput.DefaultStyles(true)
	st.Focused.Prompt = styles.SearchPromptStyle
	st.Cursor.Color = styles.ColorPrimary
	ti.SetStyles(st)
	return ti
}

// Init loads the records.
func (v View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command reloading records and stats.
func (v View) Load() tea.Cmd {
	kind := v.ctrl.Kind()
	app := v.app
	timeout := v.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		invoices, err := app.Invoices.List(ctx, kind)
		if err != nil {
			return recordsLoadedMsg{kind: kind, err: err}
		}
		stats, err := app.Invoices.Stats(ctx, kind)
		return recordsLoadedMsg{kind: kind, invoices: invoices, stats: stats, err: err}
	}
}

// Kind returns the record kind of the tab.
func (v View) Kind() billing.Kind { return v.ctrl.Kind() }

// Controller exposes the list controller.
func (v View) Controller() *Controller { return v.ctrl }

// Keys returns the key bindings, for the help dialog.
func (v View) Keys() KeyMap { return v.keys }

// Stats returns the last loaded stats.
func (v View) Stats() billing.Stats { return v.stats }

// Status returns the status line text and whether it is an error.
func (v View) Status() (string, bool) { return v.status, v.statusErr }

// HasEditorFocus reports whether keys belong to the view rather than the
// global bindings. Search input holds focus, as does any open dialog,
// including one still waiting for its data.
func (v View) HasEditorFocus() bool {
	return v.ctrl.IsSearching() || v.ctrl.Dialog() != DialogClosed
}

// SetSize updates the view dimensions.
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles messages for the view.
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		if msg.kind != v.Kind() {
			return v, nil
		}
		return v.handleRecordsLoaded(msg)
	case ruleLoadedMsg:
		if msg.kind != v.Kind() {
			return v, nil
		}
		return v.handleRuleLoaded(msg)
	case draftLoadedMsg:
		if msg.kind != v.Kind() {
			return v, nil
		}
		return v.handleDraftLoaded(msg)
	case infoLoadedMsg:
		if msg.kind != v.Kind() {
			return v, nil
		}
		return v.handleInfoLoaded(msg)
	case actionDoneMsg:
		if msg.kind != v.Kind() {
			return v, nil
		}
		return v.handleActionDone(msg)
	case tea.KeyPressMsg:
		return v.handleKey(msg)
	}

	if v.ctrl.IsSearching() {
		return v.updateSearch(msg)
	}
	if v.form != nil {
		var cmd tea.Cmd
		v.form, cmd = v.form.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v View) handleRecordsLoaded(msg recordsLoadedMsg) (View, tea.Cmd) {
	if msg.err != nil {
		log.Error().Err(msg.err).Str("kind", string(msg.kind)).Msg("failed to load invoices")
		v.setError(fmt.Errorf("load %s: %w", strings.ToLower(msg.kind.Title()), msg.err))
		return v, nil
	}
	v.ctrl.SetRecords(msg.invoices)
	v.stats = msg.stats
	v.loaded = true
	return v, nil
}

// awaiting reports whether p is the dialog still waiting for its data.
func (v View) awaiting(p pending) bool {
	return v.form == nil && v.info == nil &&
		v.ctrl.Dialog() == p.dialog && v.ctrl.DialogInvoice().ID == p.invoiceID
}

func (v View) handleRuleLoaded(msg ruleLoadedMsg) (View, tea.Cmd) {
	if !v.awaiting(msg.pending) {
		log.Debug().Str("invoice", msg.invoiceID).Msg("dropping stale rule load")
		return v, nil
	}
	if msg.err != nil {
		v.ctrl.Close()
		v.setError(msg.err)
		return v, nil
	}
	v.form = newRulesForm(v.ctrl.DialogInvoice(), msg.rule)
	return v, nil
}

func (v View) handleDraftLoaded(msg draftLoadedMsg) (View, tea.Cmd) {
	if !v.awaiting(msg.pending) {
		log.Debug().Str("invoice", msg.invoiceID).Msg("dropping stale email draft")
		return v, nil
	}
	if msg.err != nil {
		v.ctrl.Close()
		v.setError(msg.err)
		return v, nil
	}
	v.form = newEmailForm(v.ctrl.DialogInvoice(), msg.draft)
	return v, nil
}

func (v View) handleInfoLoaded(msg infoLoadedMsg) (View, tea.Cmd) {
	if !v.awaiting(msg.pending) {
		log.Debug().Str("invoice", msg.invoiceID).Msg("dropping stale patient info")
		return v, nil
	}
	if msg.err != nil {
		v.ctrl.Close()
		v.setError(msg.err)
		return v, nil
	}
	inv := v.ctrl.DialogInvoice()
	v.info = NewInfoModal(dialogTitle(DialogPatientInfo, inv), msg.markdown, v.width, v.height)
	return v, nil
}

func (v View) handleActionDone(msg actionDoneMsg) (View, tea.Cmd) {
	if msg.dialog != v.ctrl.Dialog() {
		// An export finishing behind a dialog opened since.
		if msg.err != nil {
			v.setError(msg.err)
			return v, nil
		}
		v.setStatus(msg.status)
		return v, v.Load()
	}

	v.busy = false
	if msg.err != nil {
		log.Debug().Err(msg.err).Str("dialog", v.ctrl.Dialog().String()).Msg("action rejected")
		if v.form != nil {
			v.form.Fail(msg.err)
			return v, nil
		}
		v.setError(msg.err)
		return v, nil
	}
	v.closeDialog()
	v.setStatus(msg.status)
	return v, v.Load()
}

func (v View) handleKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	switch {
	case v.info != nil:
		return v.handleInfoKey(msg)
	case v.form != nil:
		return v.handleFormKey(msg)
	case v.ctrl.Dialog() != DialogClosed:
		return v.handleLoadingKey(msg)
	case v.ctrl.IsSearching():
		return v.handleSearchKey(msg)
	}
	return v.handleNormalKey(msg)
}

// handleLoadingKey swallows keys while a dialog waits for its data. Esc
// abandons it.
func (v View) handleLoadingKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	if msg.String() == "esc" {
		v.closeDialog()
	}
	return v, nil
}

func (v View) handleInfoKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		v.closeDialog()
	case "up", "k":
		v.info.ScrollUp()
	case "down", "j":
		v.info.ScrollDown()
	default:
		v.info.Update(msg)
	}
	return v, nil
}

func (v View) handleFormKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	if v.busy {
		return v, nil
	}

	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)

	switch {
	case v.form.Cancelled():
		v.closeDialog()
		return v, nil
	case v.form.Submitted():
		v.busy = true
		return v, v.submit()
	}
	return v, cmd
}

func (v View) startSearch() (View, tea.Cmd) {
	v.ctrl.StartSearch()
	v.search.SetValue(v.ctrl.State().Filter().Query)
	v.search.CursorEnd()
	cmd := v.search.Focus()
	return v, cmd
}

func (v View) handleSearchKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.ctrl.CancelSearch()
		v.search.Reset()
		v.search.Blur()
		return v, nil
	case "enter":
		v.ctrl.ConfirmSearch()
		v.search.Blur()
		return v, nil
	}
	return v.updateSearch(msg)
}

// updateSearch passes msg to the search input, pastes and cursor blinks
// included, and filters on the resulting value.
func (v View) updateSearch(msg tea.Msg) (View, tea.Cmd) {
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.ctrl.SetQuery(v.search.Value())
	return v, cmd
}

func (v View) handleNormalKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	v.status, v.statusErr = "", false

	switch {
	case key.Matches(msg, v.keys.Up):
		v.ctrl.MoveUp()
	case key.Matches(msg, v.keys.Down):
		v.ctrl.MoveDown()
	case key.Matches(msg, v.keys.Search):
		return v.startSearch()
	case key.Matches(msg, v.keys.Status):
		v.ctrl.CycleStatus()
	case key.Matches(msg, v.keys.Overdue):
		v.ctrl.CycleOverdue()
	case key.Matches(msg, v.keys.PageSize):
		v.ctrl.CyclePageSize()
	case key.Matches(msg, v.keys.NextPage):
		v.ctrl.NextPage()
	case key.Matches(msg, v.keys.PrevPage):
		v.ctrl.PrevPage()
	case key.Matches(msg, v.keys.Toggle):
		v.ctrl.ToggleCurrent()
	case key.Matches(msg, v.keys.ToggleAll):
		v.ctrl.ToggleAll()
	case key.Matches(msg, v.keys.ClearMarks):
		v.ctrl.State().ClearSelection()
	case key.Matches(msg, v.keys.ShowPaid):
		v.ctrl.ToggleShowPaid()
	case key.Matches(msg, v.keys.Refresh):
		return v, v.Load()
	case key.Matches(msg, v.keys.FollowUp):
		return v.open(DialogFollowUp)
	case key.Matches(msg, v.keys.Rules):
		return v.open(DialogSetSequence)
	case key.Matches(msg, v.keys.MarkPaid):
		return v.open(DialogMarkPaid)
	case key.Matches(msg, v.keys.Email):
		return v.open(DialogActionEmail)
	case key.Matches(msg, v.keys.Info):
		return v.open(DialogPatientInfo)
	case key.Matches(msg, v.keys.Export):
		return v.export()
	}
	return v, nil
}

// export writes the statement PDF of the row under the cursor.
func (v View) export() (View, tea.Cmd) {
	inv, ok := v.ctrl.Selected()
	if !ok {
		return v, nil
	}
	invoices := v.app.Invoices
	return v, v.run(func(ctx context.Context) (string, error) {
		path, err := invoices.Export(ctx, inv.ID, "")
		if err != nil {
			return "", err
		}
		return "statement written to " + path, nil
	})
}

// open opens dialog d for the row under the cursor. Dialogs that need
// stored data open once it has loaded.
func (v View) open(d Dialog) (View, tea.Cmd) {
	inv, ok := v.ctrl.Selected()
	if !ok {
		return v, nil
	}
	if d == DialogActionEmail && inv.Kind != billing.KindWorkcover {
		v.setStatus("email is only available for workcover claims")
		return v, nil
	}
	if (d == DialogMarkPaid || d == DialogFollowUp) && inv.IsPaid() {
		v.setError(fmt.Errorf("%s: %w", inv.ID, billing.ErrAlreadyPaid))
		return v, nil
	}
	if !v.ctrl.Open(d) {
		return v, nil
	}
	p := pending{dialog: d, invoiceID: inv.ID}

	switch d {
	case DialogFollowUp:
		v.form = newFollowUpForm(inv, v.app.Actions.DefaultFollowUp(inv), v.app.Config.RepeatLabels())
		return v, nil
	case DialogMarkPaid:
		v.form = newMarkPaidForm(inv, v.now())
		return v, nil
	case DialogSetSequence:
		return v, v.fetch(func(ctx context.Context) tea.Msg {
			rule, err := v.app.Actions.Rule(ctx, inv.ID)
			return ruleLoadedMsg{kind: inv.Kind, pending: p, rule: rule, err: err}
		})
	case DialogActionEmail:
		return v, v.fetch(func(ctx context.Context) tea.Msg {
			draft, err := v.app.Actions.EmailDraft(ctx, inv.ID)
			return draftLoadedMsg{kind: inv.Kind, pending: p, draft: draft, err: err}
		})
	case DialogPatientInfo:
		return v, v.fetch(func(ctx context.Context) tea.Msg {
			md, err := v.app.Invoices.PatientInfo(ctx, inv.ID)
			return infoLoadedMsg{kind: inv.Kind, pending: p, markdown: md, err: err}
		})
	}
	return v, nil
}

// submit runs the action for the submitted dialog.
func (v View) submit() tea.Cmd {
	inv := v.ctrl.DialogInvoice()
	actions := v.app.Actions
	d := v.form

	switch v.ctrl.Dialog() {
	case DialogFollowUp:
		f := followUpFromForm(inv.ID, d)
		return v.run(func(ctx context.Context) (string, error) {
			res, err := actions.FollowUp(ctx, f)
			if err != nil {
				return "", err
			}
			if len(res.Sends) == 0 {
				return fmt.Sprintf("%s follow-up recorded for %s", f.Channel.Title(), inv.Patient), nil
			}
			return fmt.Sprintf("%s to %s scheduled, first %s", f.Channel.Title(), inv.Patient, humanize.Time(res.Sends[0].SendAt)), nil
		})
	case DialogSetSequence:
		rule := rulesFromForm(inv.ID, d)
		return v.run(func(ctx context.Context) (string, error) {
			if err := actions.SaveRules(ctx, rule); err != nil {
				return "", err
			}
			return "sequence rules saved for " + inv.ID, nil
		})
	case DialogMarkPaid:
		p, err := paymentFromForm(inv.ID, d)
		if err != nil {
			return v.run(func(context.Context) (string, error) { return "", err })
		}
		return v.run(func(ctx context.Context) (string, error) {
			if _, err := actions.MarkPaid(ctx, p); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s marked paid (%s)", inv.ID, billing.FormatMoney(p.AmountPaid)), nil
		})
	case DialogActionEmail:
		draft := draftFromForm(d)
		return v.run(func(ctx context.Context) (string, error) {
			if err := actions.SendEmail(ctx, inv.ID, draft); err != nil {
				return "", err
			}
			return "email to " + draft.To + " recorded", nil
		})
	}
	return nil
}

func (v View) fetch(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := v.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (v View) run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	kind := v.Kind()
	dialog := v.ctrl.Dialog()
	return v.fetch(func(ctx context.Context) tea.Msg {
		status, err := fn(ctx)
		return actionDoneMsg{kind: kind, dialog: dialog, status: status, err: err}
	})
}

func (v *View) closeDialog() {
	v.form = nil
	v.info = nil
	v.busy = false
	v.ctrl.Close()
}

func (v *View) setStatus(s string) {
	v.status, v.statusErr = s, false
}

func (v *View) setError(err error) {
	v.status, v.statusErr = err.Error(), true
}

// View renders the filter line, the table and the pager.
func (v View) View() string {
	state := v.ctrl.State()
	page := state.Current()
	cols := layoutColumns(columnsFor(v.Kind()), v.width)

	var b strings.Builder
	b.WriteString(v.renderFilterLine())
	b.WriteString("\n")
	b.WriteString(renderHeader(cols, state.SelectAll()))
	b.WriteString("\n")

	switch {
	case !v.loaded:
		b.WriteString(styles.EmptyStateStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(page.Items) == 0:
		b.WriteString(styles.EmptyStateStyle.Render(emptyMessage(v.Kind())))
		b.WriteString("\n")
	default:
		sel := state.Selection()
		for i, inv := range page.Items {
			b.WriteString(renderRow(cols, inv, i == v.ctrl.Cursor(), sel.Has(inv.ID)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(renderPager(page, state.PageState()))
	return b.String()
}

func emptyMessage(kind billing.Kind) string {
	if kind == billing.KindWorkcover {
		return "No claims match your filters."
	}
	return "No invoices match your filters."
}

func (v View) renderFilterLine() string {
	state := v.ctrl.State()
	f := state.Filter()

	var search string
	switch {
	case v.ctrl.IsSearching():
		search = v.search.View()
	case f.Query != "":
		search = styles.TextMutedStyle.Render("Search: ") + f.Query
	default:
		search = styles.TextMutedStyle.Render("/ to search")
	}

	parts := []string{search, styles.FilterChipStyle.Render("Status: " + f.Status)}
	if f.Overdue != "" && f.Overdue != listing.OverdueAny {
		parts = append(parts, styles.FilterChipStyle.Render("Overdue: "+f.Overdue))
	}
	if v.Kind() == billing.KindWorkcover {
		shown := "hidden"
		if f.ShowPaid {
			shown = "shown"
		}
		parts = append(parts, styles.FilterChipStyle.Render("Paid: "+shown))
	}
	if n := state.Selection().Len(); n > 0 {
		parts = append(parts, styles.RowSelectedStyle.Render(fmt.Sprintf("%d selected", n)))
	}
	return " " + strings.Join(parts, styles.TextMutedStyle.Render("  |  "))
}

// renderPager renders "Showing a-b of n", the page window and the size.
func renderPager(page listing.Page[billing.Invoice], ps listing.PageState) string {
	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(styles.TextMutedStyle.Render(fmt.Sprintf("Showing %d-%d of %d", page.ShowingStart(), page.ShowingEnd(), page.Total)))
	b.WriteString("   ")

	for _, p := range listing.PageWindow(ps.Page, page.PageCount) {
		switch {
		case p == listing.Ellipsis:
			b.WriteString(styles.PageStyle.Render(styles.IconEllipsis))
		case p == ps.Page:
			b.WriteString(styles.PageCurrentStyle.Render(fmt.Sprint(p)))
		default:
			b.WriteString(styles.PageStyle.Render(fmt.Sprint(p)))
		}
	}

	b.WriteString("   ")
	b.WriteString(styles.TextMutedStyle.Render(fmt.Sprintf("%d per page", ps.Size)))
	return b.String()
}

// StatsView renders the summary cards shown above the list.
func (v View) StatsView() string {
	s := v.stats
	unpaid := "Unpaid invoices"
	if v.Kind() == billing.KindWorkcover {
		unpaid = "Unpaid claims"
	}

	cards := []string{
		statCard("Total outstanding", billing.FormatMoney(s.TotalOutstanding)),
		statCard(unpaid, fmt.Sprint(s.Unpaid)),
		statCard("Overdue", fmt.Sprint(s.Overdue)),
		statCard("Avg days overdue", fmt.Sprint(s.AverageDaysOverdue)),
		statCard("Reminders sent", fmt.Sprint(s.RemindersSent)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func statCard(label, value string) string {
	return styles.StatCardStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		styles.StatLabelStyle.Render(label),
		styles.StatValueStyle.Render(value),
	))
}

// Overlay renders the open dialog or info modal centered over background.
func (v View) Overlay(background string, width, height int) string {
	var modal string
	switch {
	case v.info != nil:
		modal = v.info.View()
	case v.form != nil:
		body := v.form.View()
		if v.busy {
			body = lipgloss.JoinVertical(lipgloss.Left, body, styles.TextMutedStyle.Render("saving..."))
		}
		modal = styles.ModalStyle.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ModalTitleStyle.Render(v.form.Title),
			"",
			body,
		))
	case v.ctrl.Dialog() != DialogClosed:
		modal = styles.ModalStyle.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ModalTitleStyle.Render(dialogTitle(v.ctrl.Dialog(), v.ctrl.DialogInvoice())),
			"",
			styles.TextMutedStyle.Render("loading...  esc: cancel"),
		))
	default:
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)
	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)
	modalLayer.X(max((width-modalW)/2, 0)).Y(max((height-modalH)/2, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
