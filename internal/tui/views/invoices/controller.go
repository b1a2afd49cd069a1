// Package invoices implements the invoice list tab: the filter, page and
// selection pipeline, the row cursor and the per-row action dialogs.
package invoices

import (
	"slices"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/listing"
)

// Dialog identifies the per-row dialog currently open. At most one
// dialog is open at a time.
type Dialog int

const (
	DialogClosed Dialog = iota
	DialogFollowUp
	DialogSetSequence
	DialogPatientInfo
	DialogMarkPaid
	DialogActionEmail
)

// String returns the dialog title.
func (d Dialog) String() string {
	switch d {
	case DialogFollowUp:
		return "Follow up"
	case DialogSetSequence:
		return "Set sequence rules"
	case DialogPatientInfo:
		return "Patient info"
	case DialogMarkPaid:
		return "Mark as paid"
	case DialogActionEmail:
		return "Action email"
	default:
		return "closed"
	}
}

// Controller holds the list state of one tab plus the row cursor, the
// search input and the open dialog. It contains no Bubble Tea logic.
type Controller struct {
	kind     billing.Kind
	state    *listing.State
	statuses []string
	cursor   int

	searching bool

	dialog    Dialog
	dialogRow billing.Invoice
}

// NewController creates an empty list for kind with the given page size.
func NewController(kind billing.Kind, pageSize int) *Controller {
	return &Controller{
		kind:     kind,
		state:    listing.NewState(nil, pageSize, listing.MatcherFor(kind)),
		statuses: billing.StatusesFor(kind),
	}
}

// Kind returns the record kind listed by this controller.
func (c *Controller) Kind() billing.Kind { return c.kind }

// State returns the underlying list state.
func (c *Controller) State() *listing.State { return c.state }

// SetRecords replaces the records, keeping filter, page and selection.
func (c *Controller) SetRecords(records []billing.Invoice) {
	c.state.SetRecords(records)
	c.clampCursor()
}

// Rows returns the invoices on the current page.
func (c *Controller) Rows() []billing.Invoice {
	return c.state.Current().Items
}

// Cursor returns the row cursor within the current page.
func (c *Controller) Cursor() int { return c.cursor }

// MoveUp moves the cursor up one row.
func (c *Controller) MoveUp() {
	if c.cursor > 0 {
		c.cursor--
	}
}

// MoveDown moves the cursor down one row.
func (c *Controller) MoveDown() {
	if c.cursor < len(c.Rows())-1 {
		c.cursor++
	}
}

// Selected returns the invoice under the cursor.
func (c *Controller) Selected() (billing.Invoice, bool) {
	rows := c.Rows()
	if c.cursor < 0 || c.cursor >= len(rows) {
		return billing.Invoice{}, false
	}
	return rows[c.cursor], true
}

// ToggleCurrent flips the selection of the row under the cursor.
func (c *Controller) ToggleCurrent() {
	inv, ok := c.Selected()
	if !ok {
		return
	}
	c.state.Toggle(inv.ID, !c.state.Selection().Has(inv.ID))
}

// ToggleAll flips the header checkbox: selects every visible row, or
// deselects them when all are already selected.
func (c *Controller) ToggleAll() {
	c.state.ToggleAllVisible(!c.state.SelectAll())
}

// CycleStatus advances the status selector.
func (c *Controller) CycleStatus() {
	i := slices.Index(c.statuses, c.state.Filter().Status)
	c.state.SetStatus(c.statuses[(i+1)%len(c.statuses)])
	c.cursor = 0
}

// CycleOverdue advances the days-overdue bucket.
func (c *Controller) CycleOverdue() {
	i := slices.Index(listing.OverdueBuckets, c.state.Filter().Overdue)
	c.state.SetOverdue(listing.OverdueBuckets[(i+1)%len(listing.OverdueBuckets)])
	c.cursor = 0
}

// CyclePageSize advances to the next allowed page size.
func (c *Controller) CyclePageSize() {
	i := slices.Index(listing.PageSizes, c.state.PageState().Size)
	c.state.SetPageSize(listing.PageSizes[(i+1)%len(listing.PageSizes)])
	c.cursor = 0
}

// NextPage moves to the next page.
func (c *Controller) NextPage() {
	c.state.NextPage()
	c.clampCursor()
}

// PrevPage moves to the previous page.
func (c *Controller) PrevPage() {
	c.state.PrevPage()
	c.clampCursor()
}

// ToggleShowPaid shows or hides settled claims. Only workcover lists
// hide paid records.
func (c *Controller) ToggleShowPaid() {
	if c.kind != billing.KindWorkcover {
		return
	}
	c.state.SetShowPaid(!c.state.Filter().ShowPaid)
	c.cursor = 0
}

// StartSearch enters search input mode. The view owns the text input and
// feeds its value back through SetQuery.
func (c *Controller) StartSearch() {
	c.searching = true
}

// IsSearching reports whether search input is active.
func (c *Controller) IsSearching() bool { return c.searching }

// SetQuery sets the search query. The list filters as you type, so the
// cursor returns to the first row whenever the query changes.
func (c *Controller) SetQuery(q string) {
	if q == c.state.Filter().Query {
		return
	}
	c.state.SetQuery(q)
	c.cursor = 0
}

// ConfirmSearch leaves search mode keeping the query.
func (c *Controller) ConfirmSearch() {
	c.searching = false
}

// CancelSearch leaves search mode and clears the query.
func (c *Controller) CancelSearch() {
	c.searching = false
	c.SetQuery("")
}

// Open opens dialog d for the row under the cursor. Email is only offered
// for workcover claims. It reports whether the dialog opened.
func (c *Controller) Open(d Dialog) bool {
	inv, ok := c.Selected()
	if !ok || d == DialogClosed {
		return false
	}
	if d == DialogActionEmail && inv.Kind != billing.KindWorkcover {
		return false
	}
	c.dialog = d
	c.dialogRow = inv
	return true
}

// Close closes the open dialog.
func (c *Controller) Close() {
	c.dialog = DialogClosed
	c.dialogRow = billing.Invoice{}
}

// Dialog returns the open dialog.
func (c *Controller) Dialog() Dialog { return c.dialog }

// DialogInvoice returns the invoice the open dialog acts on.
func (c *Controller) DialogInvoice() billing.Invoice { return c.dialogRow }

func (c *Controller) clampCursor() {
	n := len(c.Rows())
	if c.cursor >= n {
		c.cursor = max(n-1, 0)
	}
}
